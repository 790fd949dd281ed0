// Display-boundary formatting. The core hands out structured values only;
// every human-readable rendering of money, CPFs and report chrome happens
// here or in the cmd packages.
package common

import (
	"fmt"
	"regexp"
	"strings"

	"branch-banking-go/internal/money"
)

const (
	// Default separator widths
	DefaultWidth = 80
)

var nonDigits = regexp.MustCompile(`\D`)

// FormatBRL renders Money in the Brazilian display convention,
// e.g. "R$ 1.234,56".
func FormatBRL(m money.Money) string {
	fixed := m.String()

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, strings.Join(grouped, "."), fracPart)
}

// NormalizeCPF strips formatting characters and validates the length. The
// core only ever sees the normalized 11-digit form.
func NormalizeCPF(raw string) (string, error) {
	cpf := nonDigits.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(cpf) != 11 {
		return "", fmt.Errorf("CPF must have exactly 11 digits, got %d", len(cpf))
	}
	return cpf, nil
}

// FormatCPF renders a normalized CPF as xxx.xxx.xxx-xx.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}
	return fmt.Sprintf("%s.%s.%s-%s", cpf[:3], cpf[3:6], cpf[6:9], cpf[9:])
}

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line
func PrintBoxSeparator(width int) {
	fmt.Println("│" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}
