package analyzer

import (
	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
)

// DefaultCatalog returns the built-in pattern set. Ordering is part of the
// catalog's contract; new entries go at the end of their category block so
// existing finding ordering stays stable.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(defaultCatalogEntries())
	if err != nil {
		// The built-in entries are compiled in tests; a failure here is a
		// programming error.
		panic(err)
	}
	return catalog
}

func defaultCatalogEntries() []CatalogEntry {
	return []CatalogEntry{
		// Hard-coded credentials.
		{
			ID:          "secret-password-literal",
			Kind:        MatchRegex,
			Pattern:     `(?i)password\s*[:=]\s*["'][^"']{3,}["']`,
			Severity:    models.SeverityCritical,
			Category:    models.CategorySecret,
			Description: "Hardcoded password detected",
			Remediation: "Use environment variables or a secret management system",
		},
		{
			ID:          "secret-api-key-literal",
			Kind:        MatchRegex,
			Pattern:     `(?i)api[_-]?key\s*[:=]\s*["'][^"']{3,}["']`,
			Severity:    models.SeverityCritical,
			Category:    models.CategorySecret,
			Description: "Hardcoded API key detected",
			Remediation: "Use environment variables or a secret management system",
		},
		{
			ID:          "secret-generic-literal",
			Kind:        MatchRegex,
			Pattern:     `(?i)secret\s*[:=]\s*["'][^"']{3,}["']`,
			Severity:    models.SeverityCritical,
			Category:    models.CategorySecret,
			Description: "Hardcoded secret detected",
			Remediation: "Use environment variables or a secret management system",
		},
		{
			ID:          "secret-private-key-block",
			Kind:        MatchSubstring,
			Pattern:     "-----BEGIN",
			Severity:    models.SeverityCritical,
			Category:    models.CategorySecret,
			Description: "Private key material embedded in source",
			Remediation: "Remove the key and rotate it; load keys from secure storage",
		},
		{
			ID:          "secret-aws-access-key",
			Kind:        MatchRegex,
			Pattern:     `AKIA[0-9A-Z]{16}`,
			Severity:    models.SeverityCritical,
			Category:    models.CategorySecret,
			Description: "AWS access key ID embedded in source",
			Remediation: "Revoke the key and use an IAM role or credential provider",
		},

		// SQL injection.
		{
			ID:          "sql-string-interpolation",
			Kind:        MatchRegex,
			Pattern:     `(?i)execute(many)?\s*\(\s*["'].*%s.*["']`,
			Severity:    models.SeverityCritical,
			Category:    models.CategorySQLInjection,
			Description: "Potential SQL injection via string interpolation",
			Remediation: "Use parameterized queries or an ORM",
		},
		{
			ID:          "sql-query-concatenation",
			Kind:        MatchRegex,
			Pattern:     `(?i)(query|execute)\s*\(\s*["'][^"']*(SELECT|INSERT|UPDATE|DELETE)[^"']*["']\s*\+`,
			Severity:    models.SeverityCritical,
			Category:    models.CategorySQLInjection,
			Description: "SQL statement built by string concatenation",
			Remediation: "Use parameterized queries or an ORM",
		},

		// Command injection.
		{
			ID:          "cmd-os-system",
			Kind:        MatchRegex,
			Pattern:     `os\.system\s*\(`,
			Languages:   []lang.Language{lang.LangPython},
			Severity:    models.SeverityHigh,
			Category:    models.CategoryCommandInjection,
			Description: "Use of os.system can lead to command injection",
			Remediation: "Avoid shell invocation; use list arguments and validate inputs",
		},
		{
			ID:          "cmd-subprocess-shell",
			Kind:        MatchRegex,
			Pattern:     `subprocess\.\w+\s*\([^)]*shell\s*=\s*True`,
			Languages:   []lang.Language{lang.LangPython},
			Severity:    models.SeverityHigh,
			Category:    models.CategoryCommandInjection,
			Description: "shell=True can lead to command injection",
			Remediation: "Avoid shell=True; pass argument lists and validate inputs",
		},
		{
			ID:          "cmd-child-process-exec",
			Kind:        MatchRegex,
			Pattern:     `child_process.*\bexec\s*\(`,
			Languages:   []lang.Language{lang.LangJavaScript, lang.LangTypeScript},
			Severity:    models.SeverityHigh,
			Category:    models.CategoryCommandInjection,
			Description: "child_process exec runs through a shell",
			Remediation: "Use execFile or spawn with argument arrays",
		},

		// Path traversal.
		{
			ID:          "path-open-concatenation",
			Kind:        MatchRegex,
			Pattern:     `(?i)open\s*\(\s*[^)]*\+[^)]*\)`,
			Severity:    models.SeverityHigh,
			Category:    models.CategoryPathTraversal,
			Description: "Potential path traversal in file operation",
			Remediation: "Validate and sanitize file paths; resolve against a fixed base",
		},

		// Weak cryptography.
		{
			ID:          "crypto-md5",
			Kind:        MatchRegex,
			Pattern:     `(?i)\bmd5\s*\(`,
			Severity:    models.SeverityMedium,
			Category:    models.CategoryWeakCrypto,
			Description: "MD5 is cryptographically broken",
			Remediation: "Use SHA-256 or stronger algorithms",
		},
		{
			ID:          "crypto-sha1",
			Kind:        MatchRegex,
			Pattern:     `(?i)\bsha1\s*\(`,
			Severity:    models.SeverityMedium,
			Category:    models.CategoryWeakCrypto,
			Description: "SHA-1 is cryptographically weak",
			Remediation: "Use SHA-256 or stronger algorithms",
		},
		{
			ID:          "crypto-des-cipher",
			Kind:        MatchRegex,
			Pattern:     `(?i)\bDES\.new\s*\(|crypto/des`,
			Severity:    models.SeverityMedium,
			Category:    models.CategoryWeakCrypto,
			Description: "DES provides inadequate key strength",
			Remediation: "Use AES-GCM or another modern authenticated cipher",
		},

		// Misc.
		{
			ID:          "other-eval-call",
			Kind:        MatchRegex,
			Pattern:     `\beval\s*\(`,
			Languages:   []lang.Language{
				lang.LangPython, lang.LangJavaScript, lang.LangTypeScript,
				lang.LangRuby, lang.LangPHP,
			},
			Severity:    models.SeverityHigh,
			Category:    models.CategoryOther,
			Description: "eval on dynamic input allows code execution",
			Remediation: "Avoid eval; parse input with a safe interpreter",
		},
	}
}
