// Package extract pulls agenda items (Tagesordnungspunkte) out of
// German municipal meeting invitation PDFs.
//
// Text is read from the PDF directly; a language model then parses the
// document structure, since invitation layouts vary too much for rule
// based extraction. The model's numbered list is finally parsed back
// into plain titles.
package extract
