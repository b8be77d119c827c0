package domain

// VotedDocument is a retrieval result with its accumulated votes.
type VotedDocument struct {
	Votes    int
	Document Document
}

// RankedDocument is a document with its raw similarity to one query.
type RankedDocument struct {
	Similarity float64
	Document   Document
}

// Answer is the outcome of a two-phase ask.
type Answer struct {
	// Question is the literal user question.
	Question string

	// Plan is the raw planning completion.
	Plan string

	// Topics are the retrieval queries requested by the planning phase.
	Topics []string

	// Lookups are the parsed explicit lookup directives.
	Lookups []Directive

	// Relevant are forwarding hints from the planning phase. They are
	// reported but not acted on.
	Relevant []string

	// Documents are the de-duplicated documents passed to the answering phase.
	Documents []Document

	// RequestedTokens is the cl100k_base token total of Documents.
	RequestedTokens int

	// Raw is the raw answering completion.
	Raw string

	// Reply is the body under the Reply heading.
	Reply string
}

// TokenStat compares the full and "wordy" token counts of one file.
type TokenStat struct {
	Path  string
	Full  int
	Wordy int
}

// Ratio returns Wordy as a floored percentage of Full.
func (s TokenStat) Ratio() int {
	if s.Full == 0 {
		return 0
	}
	return s.Wordy * 100 / s.Full
}

// TokenReport aggregates token statistics over a directory.
type TokenReport struct {
	Encoding string
	Files    []TokenStat
}

// Total returns the summed statistics.
func (r TokenReport) Total() TokenStat {
	total := TokenStat{Path: "Total"}
	for _, f := range r.Files {
		total.Full += f.Full
		total.Wordy += f.Wordy
	}
	return total
}

// Average returns the per-file floored mean, or a zero stat for no files.
func (r TokenReport) Average() TokenStat {
	avg := TokenStat{Path: "Average"}
	if len(r.Files) == 0 {
		return avg
	}
	total := r.Total()
	avg.Full = total.Full / len(r.Files)
	avg.Wordy = total.Wordy / len(r.Files)
	return avg
}
