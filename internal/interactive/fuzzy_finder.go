package interactive

import (
	"os"
	"strconv"

	"iisctl/pkg/logging"

	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"
)

const selectorHeightEnv = "IISCTL_SELECTOR_HEIGHT"

// findFunc has the shape of fuzzyfinder.Find
type findFunc func(items interface{}, itemFunc func(i int) string, opts ...fuzzyfinder.Option) (int, error)

// getDisplayItemCount returns the number of items to display in the fuzzy finder
func getDisplayItemCount() int {
	heightStr := os.Getenv(selectorHeightEnv)
	if heightStr == "" {
		return 10
	}

	height, err := strconv.Atoi(heightStr)
	if err != nil || height < 1 {
		logging.LogWarn("Invalid %s value '%s', using default of 10", selectorHeightEnv, heightStr)
		return 10
	}

	if height > 20 {
		logging.LogWarn("%s of %d is too large, limiting to 20", selectorHeightEnv, height)
		return 20
	}

	return height
}

// finderOptions builds the picker layout shared by every selection prompt
func finderOptions(header string, previewFunc func(i, w, h int) string) []fuzzyfinder.Option {
	totalHeight := getDisplayItemCount() + 5

	return []fuzzyfinder.Option{
		fuzzyfinder.WithCursorPosition(fuzzyfinder.CursorPositionBottom),
		fuzzyfinder.WithPromptString("🔍 Type to search > "),
		fuzzyfinder.WithHeader(header),
		fuzzyfinder.WithMode(fuzzyfinder.ModeSmart),
		fuzzyfinder.WithHeight(totalHeight),
		fuzzyfinder.WithHorizontalAlignment(fuzzyfinder.AlignLeft),
		fuzzyfinder.WithBorder(),
		fuzzyfinder.WithPreviewWindow(previewFunc),
	}
}

// IsInteractive reports whether both stdin and stdout are terminals
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) // #nosec G115
}
