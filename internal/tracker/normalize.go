package tracker

import (
	"strings"

	"github.com/trackline/trackline/schema"
)

// noValueSentinel marks the absent old status on the first recorded
// transition of a clearquest issue.
const noValueSentinel = "no_value"

// splitList splits a stored components or links column into clean
// entries. Upstream collectors join components with pipes and links
// with commas, so both separators are accepted.
func splitList(raw string) []string {
	raw = strings.ReplaceAll(raw, "|", ",")
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// cqStatus converts a clearquest state name to its display form.
// ClearQuest stores underscores where the UI shows spaces.
func cqStatus(raw string) string {
	return strings.ReplaceAll(raw, "_", " ")
}

// cqPriority reduces a clearquest severity value like "1 Critical" to
// its final token. Already-clean values pass through.
func cqPriority(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// applyConventions normalizes issues in place according to their
// source's storage conventions and returns the surviving slice.
//
// ClearQuest issues without any recorded transition are dropped: every
// record in that system passes through at least one state change, so a
// bare row means the history pull missed it. The conventions are
// idempotent, which keeps snapshot round-trips safe.
func applyConventions(source schema.Source, issues []schema.Issue) []schema.Issue {
	if source != schema.ClearQuestSource {
		return issues
	}

	kept := issues[:0]
	for _, issue := range issues {
		if issue.History.Len() == 0 {
			continue
		}
		issue.Status = cqStatus(issue.Status)
		issue.Priority = cqPriority(issue.Priority)
		for i, old := range issue.History.Old {
			if old == noValueSentinel {
				issue.History.Old[i] = ""
			} else {
				issue.History.Old[i] = cqStatus(old)
			}
		}
		for i, next := range issue.History.New {
			issue.History.New[i] = cqStatus(next)
		}
		kept = append(kept, issue)
	}
	return kept
}
