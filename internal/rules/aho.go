package rules

import "errors"

// AhoMatcher finds any of a fixed set of substrings in a single pass.
type AhoMatcher struct {
	nodes []ahoNode
}

type ahoNode struct {
	next map[byte]int
	fail int
	out  []string
}

func NewAhoMatcher(patterns []string) (*AhoMatcher, error) {
	if len(patterns) == 0 {
		return nil, errors.New("patterns are required")
	}

	nodes := []ahoNode{{next: map[byte]int{}}}
	seen := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if _, dup := seen[pattern]; dup {
			continue
		}
		seen[pattern] = struct{}{}

		current := 0
		for i := 0; i < len(pattern); i++ {
			b := pattern[i]
			next, ok := nodes[current].next[b]
			if !ok {
				nodes = append(nodes, ahoNode{next: map[byte]int{}})
				next = len(nodes) - 1
				nodes[current].next[b] = next
			}
			current = next
		}
		nodes[current].out = append(nodes[current].out, pattern)
	}

	if len(nodes) == 1 {
		return nil, errors.New("no non-empty patterns")
	}

	queue := make([]int, 0, len(nodes))
	for _, next := range nodes[0].next {
		queue = append(queue, next)
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		for b, next := range nodes[state].next {
			fail := nodes[state].fail
			for fail != 0 {
				if _, ok := nodes[fail].next[b]; ok {
					break
				}
				fail = nodes[fail].fail
			}
			if target, ok := nodes[fail].next[b]; ok && target != next {
				nodes[next].fail = target
			}
			nodes[next].out = append(nodes[next].out, nodes[nodes[next].fail].out...)
			queue = append(queue, next)
		}
	}

	return &AhoMatcher{nodes: nodes}, nil
}

// Match reports the first pattern found in input.
func (m *AhoMatcher) Match(input string) (bool, string) {
	var found string
	m.scan(input, func(pattern string) bool {
		found = pattern
		return false
	})
	if found == "" {
		return false, ""
	}
	return true, snippet(found)
}

// MatchAll returns every distinct pattern present in input, in order of first occurrence.
func (m *AhoMatcher) MatchAll(input string) []string {
	var found []string
	seen := map[string]struct{}{}
	m.scan(input, func(pattern string) bool {
		if _, ok := seen[pattern]; !ok {
			seen[pattern] = struct{}{}
			found = append(found, pattern)
		}
		return true
	})
	return found
}

func (m *AhoMatcher) scan(input string, emit func(pattern string) bool) {
	state := 0
	for i := 0; i < len(input); i++ {
		b := input[i]
		for state != 0 {
			if _, ok := m.nodes[state].next[b]; ok {
				break
			}
			state = m.nodes[state].fail
		}
		if next, ok := m.nodes[state].next[b]; ok {
			state = next
		}

		for _, pattern := range m.nodes[state].out {
			if !emit(pattern) {
				return
			}
		}
	}
}
