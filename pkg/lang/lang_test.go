package lang

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.go", LangGo},
		{"lib.rs", LangRust},
		{"app.py", LangPython},
		{"types.pyi", LangPython},
		{"index.ts", LangTypeScript},
		{"view.tsx", LangTypeScript},
		{"script.js", LangJavaScript},
		{"mod.mjs", LangJavaScript},
		{"App.java", LangJava},
		{"core.c", LangC},
		{"core.h", LangC},
		{"engine.cpp", LangCPP},
		{"engine.hpp", LangCPP},
		{"Program.cs", LangCSharp},
		{"task.rb", LangRuby},
		{"index.php", LangPHP},
		{"setup.sh", LangBash},
		{"Dockerfile", LangBash},
		{"Makefile", LangBash},
		{"README.md", LangUnknown},
		{"data.json", LangUnknown},
		{"noext", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Detect(tt.path); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDetectWithContentHeaderSniff(t *testing.T) {
	cSniff := []byte("#include <stdio.h>\nint add(int a, int b);\n")
	if got := DetectWithContent("math.h", cSniff); got != LangC {
		t.Errorf("plain header = %q, want %q", got, LangC)
	}

	cppSniffs := [][]byte{
		[]byte("namespace math {\nint add(int a, int b);\n}\n"),
		[]byte("template <typename T>\nT add(T a, T b);\n"),
		[]byte("#include <vector>\nstd::vector<int> v;\n"),
	}
	for _, sniff := range cppSniffs {
		if got := DetectWithContent("math.h", sniff); got != LangCPP {
			t.Errorf("DetectWithContent(math.h, %q) = %q, want %q", sniff, got, LangCPP)
		}
	}

	// .cpp stays C++ regardless of content.
	if got := DetectWithContent("main.cpp", cSniff); got != LangCPP {
		t.Errorf("main.cpp = %q, want %q", got, LangCPP)
	}
}

func TestDetectWithContentShebang(t *testing.T) {
	tests := []struct {
		name  string
		sniff string
		want  Language
	}{
		{"python", "#!/usr/bin/env python3\nprint('hi')\n", LangPython},
		{"node", "#!/usr/bin/env node\nconsole.log('hi')\n", LangJavaScript},
		{"ruby", "#!/usr/bin/ruby\nputs 'hi'\n", LangRuby},
		{"bash", "#!/bin/bash\necho hi\n", LangBash},
		{"sh", "#!/bin/sh\necho hi\n", LangBash},
		{"no shebang", "plain text\n", LangUnknown},
		{"unknown interpreter", "#!/usr/bin/env perl\n", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectWithContent("script", []byte(tt.sniff)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectWithContentNilSniff(t *testing.T) {
	if got := DetectWithContent("main.go", nil); got != LangGo {
		t.Errorf("nil sniff = %q, want %q", got, LangGo)
	}
}

func TestKnown(t *testing.T) {
	if Known(LangUnknown) {
		t.Error("Known(LangUnknown) = true")
	}
	if !Known(LangGo) {
		t.Error("Known(LangGo) = false")
	}
}
