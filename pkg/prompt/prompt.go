// Package prompt assembles the text sent to the completion API.
package prompt

import "strings"

// Separator joins extracted document texts inside the assembled prompt.
const Separator = "\n---\n"

// SystemInstruction is the fixed system message for every completion
// request. The service reviews Japanese contracts, so the instruction is
// kept verbatim in Japanese.
const SystemInstruction = "あなたは一流の弁護士です。アップロードされた契約書等の内容を必ず精査し、本文から条文番号や該当箇所を明記して、具体的なリスクや懸念点を厳しく列挙してください。一般論だけでなく、本文の記載内容に基づく指摘を優先してください。"

// Instruction prefixes the assembled prompt whenever document text is
// present. It directs the model to treat the attached text as the
// authoritative contract content and to cite clause numbers.
const Instruction = "【重要】以下はアップロードされた契約書等の内容です。この内容を必ず参照し、本文から条文番号や該当箇所を明記して、具体的なリスクや懸念点を抜き出して列挙してください。一般論は不要です。必ず本文の記載内容に基づく指摘を優先してください。"

// Assemble builds the user prompt from the question, the extracted
// document texts (in upload order) and an optional custom instruction.
// It is a pure function of its inputs.
func Assemble(message string, texts []string, customInstruction string) string {
	p := message
	if len(texts) > 0 {
		p = Instruction + "\n\n" + strings.Join(texts, Separator) + "\n\n" + "Question: " + message
	}
	if customInstruction != "" {
		p += "\n[Additional instruction]" + customInstruction
	}
	return p
}
