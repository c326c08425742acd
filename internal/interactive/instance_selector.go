package interactive

import (
	"fmt"
	"io"
	"os"

	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/colors"
	"iisctl/pkg/errors"

	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
)

// InstanceSelector picks one instance out of a list
type InstanceSelector interface {
	SelectInstance(instances []awspkg.Instance) (*awspkg.Instance, error)
}

// FuzzyInstanceSelector is a fuzzy finder for selecting an instance
type FuzzyInstanceSelector struct {
	find  findFunc
	out   io.Writer
	title string
}

// NewFuzzyInstanceSelector creates a selector that prompts on the terminal
func NewFuzzyInstanceSelector() *FuzzyInstanceSelector {
	return &FuzzyInstanceSelector{
		find:  fuzzyfinder.Find,
		out:   os.Stdout,
		title: "Select Windows instance for IIS restart",
	}
}

// SelectInstance uses a fuzzy finder to select an instance from a list
func (s *FuzzyInstanceSelector) SelectInstance(instances []awspkg.Instance) (*awspkg.Instance, error) {
	if len(instances) == 0 {
		return nil, errors.NewNotFoundError("no running Windows instances available")
	}

	idx, err := s.find(instances,
		func(i int) string {
			return instanceLabel(instances[i])
		},
		finderOptions(fmt.Sprintf("%s (%d available)", s.title, len(instances)),
			func(i, w, h int) string {
				if i < 0 || i >= len(instances) {
					return ""
				}
				return instancePreview(instances[i])
			})...,
	)

	if err != nil {
		if err == fuzzyfinder.ErrAbort {
			color.New(color.FgRed).Fprintln(s.out, "❌ Instance selection cancelled")
			return nil, errors.NewValidationError("instance selection cancelled")
		}
		return nil, errors.Wrap(errors.ErrTypeValidation, "instance selection failed", err)
	}

	color.New(color.FgGreen, color.Bold).Fprintf(s.out, "✅ Selected: %s (%s)\n", displayName(instances[idx]), instances[idx].InstanceID)

	return &instances[idx], nil
}

func displayName(instance awspkg.Instance) string {
	if instance.Name == "" {
		return "N/A"
	}
	return instance.Name
}

func instanceLabel(instance awspkg.Instance) string {
	return fmt.Sprintf("%s (%s)", displayName(instance), instance.InstanceID)
}

func instancePreview(instance awspkg.Instance) string {
	var state string
	switch instance.State {
	case "running":
		state = colors.ColorSuccess("running")
	case "stopped", "terminated", "shutting-down":
		state = colors.ColorError("%s", instance.State)
	case "":
		state = "N/A"
	default:
		state = colors.ColorWarning("%s", instance.State)
	}

	privateIP := instance.PrivateIPAddress
	if privateIP == "" {
		privateIP = "N/A"
	}

	return fmt.Sprintf("Name:         %s\n"+
		"Instance ID:  %s\n"+
		"State:        %s\n"+
		"Platform:     %s\n"+
		"Private IP:   %s",
		displayName(instance), instance.InstanceID, state, instance.Platform, privateIP)
}
