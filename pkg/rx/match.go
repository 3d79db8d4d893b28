package rx

// isLineStart reports whether pos begins a line: the true start of subject,
// or (in newline-sensitive mode) immediately after a '\n'.
func isLineStart(subject []byte, pos int, nlSensitive bool) bool {
	if pos == 0 {
		return true
	}

	return nlSensitive && subject[pos-1] == '\n'
}

// isLineEnd reports whether pos ends a line: the true end of subject, or
// (in newline-sensitive mode) immediately before a '\n'.
func isLineEnd(subject []byte, pos int, nlSensitive bool) bool {
	if pos == len(subject) {
		return true
	}

	return nlSensitive && subject[pos] == '\n'
}

// atomMatchesAt reports whether atom a matches subject[pos], refusing a
// '\n' byte in newline-sensitive mode regardless of what the atom's set
// says, so a quantified atom can never consume across a line boundary.
func atomMatchesAt(a *atom, subject []byte, pos int, nlSensitive bool) bool {
	if nlSensitive && subject[pos] == '\n' {
		return false
	}

	return a.matches(subject[pos])
}

// Find searches subject for the first match starting at or after from. In
// newline-sensitive mode, '^' and '$' anchor to line boundaries rather than
// the whole-subject boundary.
func (p *Program) Find(subject []byte, from int, nlSensitive bool) (*Match, bool) {
	for pos := from; pos <= len(subject); pos++ {
		if p.startAnchor && !isLineStart(subject, pos, nlSensitive) {
			continue
		}

		end, counts, ok := p.matchAtoms(subject, 0, pos, nlSensitive)
		if !ok {
			continue
		}

		return p.buildMatch(pos, end, counts), true
	}

	return nil, false
}

// matchAtoms attempts to match atoms[idx:] starting at subject[pos:],
// greedily consuming each quantified atom and backing off on failure. It
// returns the final position and, for capture reconstruction, the number
// of bytes each atom consumed.
func (p *Program) matchAtoms(subject []byte, idx, pos int, nlSensitive bool) (int, []int, bool) {
	if idx == len(p.atoms) {
		return pos, make([]int, len(p.atoms)), true
	}

	a := &p.atoms[idx]

	if a.assertEnd {
		if !isLineEnd(subject, pos, nlSensitive) {
			return 0, nil, false
		}

		end, counts, ok := p.matchAtoms(subject, idx+1, pos, nlSensitive)
		if !ok {
			return 0, nil, false
		}

		counts[idx] = 0

		return end, counts, true
	}

	maxAvail := len(subject) - pos

	limit := maxAvail
	if a.max != unbounded && a.max < limit {
		limit = a.max
	}

	greedy := 0
	for greedy < limit && atomMatchesAt(a, subject, pos+greedy, nlSensitive) {
		greedy++
	}

	for n := greedy; n >= a.min; n-- {
		end, counts, ok := p.matchAtoms(subject, idx+1, pos+n, nlSensitive)
		if ok {
			counts[idx] = n

			return end, counts, true
		}
	}

	return 0, nil, false
}

func (p *Program) buildMatch(start, end int, counts []int) *Match {
	m := &Match{Start: start, End: end}

	for g := range m.Groups {
		m.Groups[g] = Group{Start: -1, End: -1}
	}

	m.Groups[0] = Group{Start: start, End: end}

	for g := 1; g < p.numGroups; g++ {
		span := p.groups[g]

		pos := start
		for a := 0; a < span.atomStart; a++ {
			pos += counts[a]
		}

		groupStart := pos

		for a := span.atomStart; a < span.atomEnd; a++ {
			pos += counts[a]
		}

		m.Groups[g] = Group{Start: groupStart, End: pos}
	}

	return m
}
