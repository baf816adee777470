package succ

import (
	"fmt"
	"strings"
)

type lineStage int

const (
	stageIndentation lineStage = iota
	stageKey
	stageBeforeValue
	stageValue
)

// parseLine tokenizes one line of SUCC source into its indentation, optional
// key, and optional value. A nil, false result means the line carried no
// data (blank or comment-only) and should be skipped.
func parseLine(line string) (lineMeta, bool, error) {
	stage := stageIndentation
	isEscaping := false
	trimHack := 0
	var keyBuilder, valueBuilder strings.Builder
	indentation := 0

chars:
	for _, c := range line {
		if stage == stageIndentation {
			switch {
			case c == ' ':
				indentation++
				continue
			case c == '#':
				return lineMeta{}, false, nil
			case c == ':':
				return lineMeta{}, false, fmt.Errorf("corrupted line, key may not start with a colon: %q", line)
			case c == '-':
				stage = stageBeforeValue
				continue
			default:
				stage = stageKey
			}
		}
		if stage == stageKey {
			switch {
			case c == ':':
				trimHack = 0
				stage = stageBeforeValue
				continue
			case c == '#':
				return lineMeta{}, false, fmt.Errorf("corrupted line, key may not contain a # character: %q", line)
			case c == ' ':
				trimHack++
				continue
			default:
				if trimHack != 0 {
					keyBuilder.WriteString(strings.Repeat(" ", trimHack))
					trimHack = 0
				}
				keyBuilder.WriteRune(c)
			}
		}
		if stage == stageBeforeValue {
			switch {
			case c == ' ':
				continue
			case c == '#':
				break chars
			default:
				stage = stageValue
			}
		}
		if stage == stageValue {
			switch {
			case c == ' ':
				if isEscaping {
					valueBuilder.WriteByte('\\')
					isEscaping = false
				}
				trimHack++
			case c == '\\':
				if isEscaping {
					valueBuilder.WriteByte('\\')
				} else {
					if trimHack != 0 {
						valueBuilder.WriteString(strings.Repeat(" ", trimHack))
						trimHack = 0
					}
					isEscaping = true
				}
			case c == '#':
				if isEscaping {
					valueBuilder.WriteByte('#')
					isEscaping = false
				} else {
					break chars
				}
			default:
				if isEscaping {
					valueBuilder.WriteByte('\\')
					isEscaping = false
				}
				if trimHack != 0 {
					valueBuilder.WriteString(strings.Repeat(" ", trimHack))
					trimHack = 0
				}
				valueBuilder.WriteRune(c)
			}
		}
	}

	if stage == stageIndentation {
		return lineMeta{}, false, nil
	}
	if stage == stageKey {
		return lineMeta{}, false, fmt.Errorf("corrupted line, key started but not ended: %q", line)
	}
	if stage == stageValue && isEscaping {
		valueBuilder.WriteByte('\\')
	}

	var key, value *string
	if k := keyBuilder.String(); k != "" {
		key = &k
	}
	if v := valueBuilder.String(); v != "" {
		value = &v
	}
	return lineMeta{indentation: indentation, key: key, value: value}, true, nil
}
