package prompt

import (
	"strings"
	"testing"
)

func TestAssembleMessageOnly(t *testing.T) {
	got := Assemble("この契約の危険な条項は?", nil, "")
	if got != "この契約の危険な条項は?" {
		t.Errorf("Expected the bare message, got %q", got)
	}
}

func TestAssembleWithTexts(t *testing.T) {
	texts := []string{"第1条 本契約は...", "第2条 損害賠償..."}
	got := Assemble("リスクを教えて", texts, "")

	want := Instruction + "\n\n" + "第1条 本契約は..." + Separator + "第2条 損害賠償..." + "\n\n" + "Question: リスクを教えて"
	if got != want {
		t.Errorf("Assembled prompt mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestAssembleCustomInstruction(t *testing.T) {
	tests := []struct {
		name    string
		message string
		texts   []string
		custom  string
		suffix  string
	}{
		{
			name:    "custom without texts",
			message: "要約して",
			custom:  "箇条書きで",
			suffix:  "\n[Additional instruction]箇条書きで",
		},
		{
			name:    "custom with texts",
			message: "確認して",
			texts:   []string{"秘密保持条項"},
			custom:  "英語で回答",
			suffix:  "\n[Additional instruction]英語で回答",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(tt.message, tt.texts, tt.custom)
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("Expected prompt to end with %q, got %q", tt.suffix, got)
			}
			base := Assemble(tt.message, tt.texts, "")
			if got != base+tt.suffix {
				t.Errorf("Custom instruction should only append a suffix:\ngot:  %q\nbase: %q", got, base)
			}
		})
	}
}

func TestAssembleEmptyCustomIsNoop(t *testing.T) {
	withEmpty := Assemble("質問", []string{"第3条"}, "")
	if strings.Contains(withEmpty, "[Additional instruction]") {
		t.Errorf("Empty custom instruction must not add the marker, got %q", withEmpty)
	}
}

func TestAssemblePreservesTextOrder(t *testing.T) {
	texts := []string{"alpha", "bravo", "charlie"}
	got := Assemble("q", texts, "")

	last := -1
	for _, text := range texts {
		idx := strings.Index(got, text)
		if idx < 0 {
			t.Fatalf("Expected %q in assembled prompt", text)
		}
		if idx < last {
			t.Errorf("Text %q appears out of upload order", text)
		}
		last = idx
	}
}
