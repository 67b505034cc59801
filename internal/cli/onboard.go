package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/onboarding"
)

var errAborted = errors.New("onboarding aborted")

func init() {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Pick college, branch and subject and print the study link",
		Run:   runOnboard,
	}

	RootCmd.AddCommand(cmd)
}

func runOnboard(cmd *cobra.Command, args []string) {
	profile, url, err := runWizard(os.Stdin, os.Stdout)
	if err != nil {
		exitErr("onboard", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(map[string]any{"profile": profile, "url": url}, "", "  ")
		fmt.Println(string(b))
		return
	}

	color.Green("\nReady to study %s", profile.Subject)
	fmt.Println(url)
	fmt.Printf("Start chatting: studymate chat --subject %q --college %q --branch %q\n",
		profile.Subject, profile.College, profile.Branch)
}

var stepTitles = map[onboarding.Step]string{
	onboarding.StepCollege: "Select your college",
	onboarding.StepBranch:  "Select your branch",
	onboarding.StepSubject: "Select your subject",
}

// runWizard drives the onboarding wizard from line input.
// A number picks an option, "a" adds a custom entry, "b" goes back and
// "c" continues once a subject is chosen.
func runWizard(in io.Reader, out io.Writer) (domain.StudyProfile, string, error) {
	w := onboarding.NewWizard()
	scanner := bufio.NewScanner(in)
	heading := color.New(color.FgCyan, color.Bold)

	for {
		step := w.Step()
		options := onboarding.Options(step)

		heading.Fprintf(out, "\n%s\n", stepTitles[step])
		for i, opt := range options {
			fmt.Fprintf(out, "  %2d) %s\n", i+1, opt)
		}
		fmt.Fprintln(out, "   a) Add your own")
		if step != onboarding.StepCollege {
			fmt.Fprintln(out, "   b) Back")
		}
		if subject := w.Profile().Subject; subject != "" {
			fmt.Fprintf(out, "   c) Continue with %s\n", subject)
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			return domain.StudyProfile{}, "", errAborted
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "a":
			w.Select(onboarding.AddOption)
			fmt.Fprint(out, "Name: ")
			if !scanner.Scan() {
				return domain.StudyProfile{}, "", errAborted
			}
			if err := w.AddCustom(scanner.Text()); err != nil {
				w.CancelCustom()
				color.New(color.FgRed).Fprintf(out, "%v\n", err)
			}
		case "b":
			w.Back()
		case "c":
			url, err := w.Continue()
			if err != nil {
				color.New(color.FgRed).Fprintf(out, "%v\n", err)
				continue
			}
			return w.Profile(), url, nil
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(options) {
				color.New(color.FgRed).Fprintf(out, "pick 1-%d, a, b or c\n", len(options))
				continue
			}
			w.Select(options[n-1])
		}
	}
}
