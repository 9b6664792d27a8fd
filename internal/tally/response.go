package tally

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Response is the interpreted outcome of one import request. LineError is the
// structured error marker Tally attaches to a rejected line ("" when absent);
// Exceptions is the exception counter from the import result, which can be
// non-zero even when the document was partially accepted. ExceptionText is
// the detail Tally carries in an ERROR or EXCEPTION tag alongside a non-zero
// counter; an exception without any such detail is a partial acceptance, not
// a failure.
type Response struct {
	LineError     string
	Exceptions    int
	ExceptionText string
	Raw           string
}

// Outcome classifies an interpreted response.
type Outcome int

const (
	// OutcomeSuccess: no error marker present.
	OutcomeSuccess Outcome = iota
	// OutcomeDuplicate: an error marker is present but only says the target
	// record already exists. Re-running provisioning must treat this as
	// success, otherwise the pipeline would not be idempotent.
	OutcomeDuplicate
	// OutcomeFailed: an error marker is present and does not indicate a
	// duplicate.
	OutcomeFailed
)

// DuplicatePredicate decides whether an error message merely reports that the
// target record already exists. It is a named strategy so a different
// accounting-backend dialect can swap the wording without touching call
// sites.
type DuplicatePredicate func(message string) bool

// AlreadyExists is the stock Tally dialect: any error text containing
// "already exists", case-insensitively, is a benign duplicate.
func AlreadyExists(message string) bool {
	return strings.Contains(strings.ToLower(message), "already exists")
}

// Fallback patterns for responses that are not well-formed XML (Tally emits
// bare fragments for some failures). They match the same markers the XML
// path reads.
var (
	lineErrorPattern  = regexp.MustCompile(`<LINEERROR>(.*?)</LINEERROR>`)
	exceptionsPattern = regexp.MustCompile(`<EXCEPTIONS>(\d+)</EXCEPTIONS>`)
	errorPattern      = regexp.MustCompile(`<ERROR>(.*?)</ERROR>`)
	exceptionPattern  = regexp.MustCompile(`<EXCEPTION>(.*?)</EXCEPTION>`)
)

// Interpret extracts the line-level error marker and the exception counter
// from a raw response body. Absence of both is success; Interpret itself
// never fails.
func Interpret(body string) *Response {
	resp := &Response{Raw: body}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err == nil && doc.Root() != nil {
		if el := doc.FindElement("//LINEERROR"); el != nil {
			resp.LineError = strings.TrimSpace(el.Text())
		}
		if el := doc.FindElement("//EXCEPTIONS"); el != nil {
			if n, err := strconv.Atoi(strings.TrimSpace(el.Text())); err == nil {
				resp.Exceptions = n
			}
		}
		// ERROR carries the detail when present; EXCEPTION is the fallback.
		if el := doc.FindElement("//ERROR"); el != nil {
			resp.ExceptionText = strings.TrimSpace(el.Text())
		} else if el := doc.FindElement("//EXCEPTION"); el != nil {
			resp.ExceptionText = strings.TrimSpace(el.Text())
		}
		return resp
	}

	// Not well-formed; fall back to pattern matching so a rejected import is
	// never mistaken for success.
	if m := lineErrorPattern.FindStringSubmatch(body); len(m) > 1 {
		resp.LineError = strings.TrimSpace(m[1])
	}
	if m := exceptionsPattern.FindStringSubmatch(body); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			resp.Exceptions = n
		}
	}
	if m := errorPattern.FindStringSubmatch(body); len(m) > 1 {
		resp.ExceptionText = strings.TrimSpace(m[1])
	} else if m := exceptionPattern.FindStringSubmatch(body); len(m) > 1 {
		resp.ExceptionText = strings.TrimSpace(m[1])
	}
	return resp
}

// Classify applies the benign/fatal rule to the response. A nil predicate
// uses the stock AlreadyExists dialect.
func (r *Response) Classify(dup DuplicatePredicate) Outcome {
	if r.LineError == "" {
		return OutcomeSuccess
	}
	if dup == nil {
		dup = AlreadyExists
	}
	if dup(r.LineError) {
		return OutcomeDuplicate
	}
	return OutcomeFailed
}
