package simchat

import (
	"strconv"
	"strings"
)

// Draft is a message parsed from an import file, before IDs are assigned.
type Draft struct {
	AppearAtSeconds int
	SenderName      string
	Content         string
	Type            MessageType
	Position        int
}

// ParseCSV imports chat messages from CSV lines of the form
// "seconds,name,message[,type]". A header row is skipped when the first line
// mentions time/seconds. Rows with fewer than three fields or an unparseable
// time are dropped and counted in skipped.
func ParseCSV(csvContent string) (drafts []Draft, skipped int) {
	lines := strings.Split(strings.TrimSpace(csvContent), "\n")
	if len(lines) == 0 {
		return nil, 0
	}

	start := 0
	first := strings.ToLower(lines[0])
	if strings.Contains(first, "time") || strings.Contains(first, "second") {
		start = 1
	}

	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		parts := splitCSVLine(line)
		if len(parts) < 3 {
			skipped++
			continue
		}
		seconds, ok := ParseTimeString(parts[0])
		if !ok {
			skipped++
			continue
		}
		typeStr := ""
		if len(parts) > 3 {
			typeStr = parts[3]
		}
		drafts = append(drafts, Draft{
			AppearAtSeconds: seconds,
			SenderName:      strings.TrimSpace(parts[1]),
			Content:         strings.TrimSpace(parts[2]),
			Type:            ParseMessageType(typeStr),
			Position:        i - start,
		})
	}
	return drafts, skipped
}

// ParseTimeString parses "90", "1:30" (MM:SS) or "1:02:30" (HH:MM:SS) into
// seconds.
func ParseTimeString(s string) (int, bool) {
	trimmed := strings.TrimSpace(s)
	if strings.Contains(trimmed, ":") {
		parts := strings.Split(trimmed, ":")
		nums := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return 0, false
			}
			nums = append(nums, n)
		}
		switch len(nums) {
		case 2:
			return nums[0]*60 + nums[1], true
		case 3:
			return nums[0]*3600 + nums[1]*60 + nums[2], true
		}
		return 0, false
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseMessageType maps a free-form type column to a MessageType, defaulting
// to COMMENT.
func ParseMessageType(s string) MessageType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QUESTION":
		return TypeQuestion
	case "REACTION":
		return TypeReaction
	case "TESTIMONIAL":
		return TypeTestimonial
	default:
		return TypeComment
	}
}

// splitCSVLine splits on commas outside double quotes; "" is an escaped quote.
func splitCSVLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	result = append(result, current.String())
	return result
}
