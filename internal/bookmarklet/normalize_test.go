package bookmarklet

import (
	"strings"
	"testing"
)

const wrapped = "javascript:(function(){try{\nalert(1)\n}catch(e){alert('Bookmarklet error: '+e);}})();"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare statement gets wrapped",
			input:    "alert(1)",
			expected: wrapped,
		},
		{
			name:     "surrounding whitespace trimmed before wrapping",
			input:    "  alert(1)\n\n",
			expected: wrapped,
		},
		{
			name:     "javascript prefix passes through verbatim",
			input:    "javascript:alert(1)",
			expected: "javascript:alert(1)",
		},
		{
			name:     "javascript prefix only trimmed",
			input:    "  javascript:alert(1)  ",
			expected: "javascript:alert(1)",
		},
		{
			name:     "fence without language tag",
			input:    "```\nalert(1)\n```",
			expected: wrapped,
		},
		{
			name:     "fence with language tag",
			input:    "```js\nalert(1)\n```",
			expected: wrapped,
		},
		{
			name:     "fence with longer language tag",
			input:    "```javascript\nalert(1)\n```",
			expected: wrapped,
		},
		{
			name:     "four backtick fence",
			input:    "````\nalert(1)\n````",
			expected: wrapped,
		},
		{
			name:     "tilde fence",
			input:    "~~~js\nalert(1)\n~~~",
			expected: wrapped,
		},
		{
			name:     "fenced executable link passes through",
			input:    "```\njavascript:alert(1)\n```",
			expected: "javascript:alert(1)",
		},
		{
			name:     "fenced multiline body preserved",
			input:    "```js\nvar a=1;\nalert(a);\n```",
			expected: "javascript:(function(){try{\nvar a=1;\nalert(a);\n}catch(e){alert('Bookmarklet error: '+e);}})();",
		},
		{
			name:     "empty input still wraps",
			input:    "",
			expected: "javascript:(function(){try{\n\n}catch(e){alert('Bookmarklet error: '+e);}})();",
		},
		{
			name:     "whitespace-only input still wraps",
			input:    "   \n\t",
			expected: "javascript:(function(){try{\n\n}catch(e){alert('Bookmarklet error: '+e);}})();",
		},
		{
			name:     "interior backticks survive without a leading fence",
			input:    "alert(`hi`)",
			expected: "javascript:(function(){try{\nalert(`hi`)\n}catch(e){alert('Bookmarklet error: '+e);}})();",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"alert(1)",
		"javascript:alert(1)",
		"```js\nalert(1)\n```",
		"~~~\nalert(1)\n~~~",
		"",
		"var a = `tick`;",
		"document.title='x'\nalert(document.title)",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first pass %q, second pass %q", input, once, twice)
		}
	}
}

func TestNormalizeAlwaysExecutable(t *testing.T) {
	inputs := []string{
		"alert(1)",
		"javascript:void(0)",
		"```python\nprint('x')\n```",
		"",
	}

	for _, input := range inputs {
		got := Normalize(input)
		if !strings.HasPrefix(got, LinkPrefix) {
			t.Errorf("Normalize(%q) = %q, missing %q prefix", input, got, LinkPrefix)
		}
	}
}
