package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Summary struct {
	Total    int         `json:"total"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	TopHosts []CountItem `json:"top_hosts"`
	TopRules []CountItem `json:"top_rules"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func Summarize(entries []Entry) Summary {
	var summary Summary
	if len(entries) == 0 {
		return summary
	}

	summary.Start = entries[0].Time
	summary.End = entries[0].Time

	hostCounts := map[string]int{}
	ruleCounts := map[string]int{}

	for _, e := range entries {
		summary.Total++
		if e.Time.Before(summary.Start) {
			summary.Start = e.Time
		}
		if e.Time.After(summary.End) {
			summary.End = e.Time
		}

		hostCounts[e.SourceHost]++
		rule := e.MatchedRule
		if rule == "" {
			rule = "unrecorded"
		}
		ruleCounts[rule]++
	}

	summary.TopHosts = topCounts(hostCounts, 5)
	summary.TopRules = topCounts(ruleCounts, 5)

	return summary
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func RenderText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d\n", summary.Total)
	if summary.Total > 0 {
		fmt.Fprintf(&b, "Range: %s .. %s\n", summary.Start.Format(time.RFC3339), summary.End.Format(time.RFC3339))
	}

	writeCounts(&b, "Top hosts", summary.TopHosts)
	writeCounts(&b, "Top rules", summary.TopRules)

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# ClickFix Threat Summary\n\n")
	fmt.Fprintf(&b, "- Total: %d\n", summary.Total)
	if summary.Total > 0 {
		fmt.Fprintf(&b, "- Range: %s .. %s\n", summary.Start.Format(time.RFC3339), summary.End.Format(time.RFC3339))
	}
	b.WriteString("\n")

	writeCountsMarkdown(&b, "Top hosts", summary.TopHosts)
	writeCountsMarkdown(&b, "Top rules", summary.TopRules)

	return b.String()
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
}

func writeCountsMarkdown(b *strings.Builder, title string, items []CountItem) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
	b.WriteString("\n")
}
