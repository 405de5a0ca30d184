// internal/domain/models/visastep.go
package models

import "strings"

// VisaStep is a required document type in the staged OPT review.
type VisaStep string

const (
	StepI983       VisaStep = "I-983"
	StepI20        VisaStep = "I-20"
	StepOPTReceipt VisaStep = "OPT-Receipt"
	StepSTEMEAD    VisaStep = "STEM-EAD"
	StepTerminate  VisaStep = "Terminate"
)

// ParseVisaStep maps canonical and legacy spellings onto a VisaStep.
// Separators and case are ignored, so "OPT Receipt", "opt_receipt" and
// "OPT-Receipt" all resolve to StepOPTReceipt.
func ParseVisaStep(s string) (VisaStep, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))

	switch key {
	case "i983":
		return StepI983, true
	case "i20":
		return StepI20, true
	case "optreceipt":
		return StepOPTReceipt, true
	case "stemead", "optstemead":
		return StepSTEMEAD, true
	case "terminate", "terminated", "done":
		return StepTerminate, true
	}
	return "", false
}

func (s VisaStep) String() string { return string(s) }
