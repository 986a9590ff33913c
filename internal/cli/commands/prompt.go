package commands

import (
	"errors"
	"fmt"
	"strconv"
	"syscall"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/foodctl/foodctl/internal/cli/client"
)

var errNotInteractive = errors.New("not running in a terminal")

type selectOption struct {
	Label string
	Value string
}

var selectTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}",
	Active:   "> {{ .Label | cyan }}",
	Inactive: "  {{ .Label }}",
	Selected: "{{ .Label | green }}",
}

// selectOne shows an interactive list and returns the chosen value
func selectOne(label string, options []selectOption) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to select")
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: selectTemplates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}

	return options[index].Value, nil
}

// promptLine asks for a single line of text with an optional default
func promptLine(label, def string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}
	return value, nil
}

// readPassword reads a password without echo
func readPassword(e *Env) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errNotInteractive
	}
	fmt.Fprint(e.stderr(), "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(e.stderr()) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func ratingOptions() []selectOption {
	options := make([]selectOption, 0, 5)
	for score := 5; score >= 1; score-- {
		options = append(options, selectOption{
			Label: fmt.Sprintf("%d %s", score, stars(score)),
			Value: strconv.Itoa(score),
		})
	}
	return options
}

func stars(n int) string {
	s := ""
	for range n {
		s += "★"
	}
	return s
}

func orderOptions(orders []client.OrderSummary) []selectOption {
	var options []selectOption
	for _, o := range orders {
		if o.Status != client.StatusInProcess {
			continue
		}
		options = append(options, selectOption{
			Label: fmt.Sprintf("#%s  %s  delivery %s", o.ShortID(), formatPrice(o.Price), formatTime(o.DeliveryTime)),
			Value: o.ID,
		})
	}
	return options
}

// IsInteractive reports whether stdin is attached to a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(syscall.Stdin))
}
