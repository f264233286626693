package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wes/paca/internal/utils"
)

func msToDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func sanitizeFileName(fileName string) string {
	var b strings.Builder
	for _, r := range fileName {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// changedString returns a pointer to the flag value only when the flag was passed, so an
// explicit empty value can clear a field.
func changedString(changed bool, value string) *string {
	if !changed {
		return nil
	}
	return &value
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func rateLabel(rate *float64) string {
	if r := utils.FromPtr(rate); r > 0 {
		return fmt.Sprintf("$%.2f/hr", r)
	}
	return "not billable"
}

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
