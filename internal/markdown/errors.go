package markdown

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// ErrMalformedFrontMatter marks documents whose metadata block is missing
// required fields or carries an unparsable date. The pipeline aborts the whole
// run on the first occurrence rather than silently skipping the post.
var ErrMalformedFrontMatter = errors.New("markdown: malformed front matter")

const frontMatterInvalidCode = "PRESS_FRONT_MATTER_INVALID"

func malformedFrontMatter(path, reason string) error {
	base := fmt.Errorf("%w: %s: %s", ErrMalformedFrontMatter, path, reason)
	return goerrors.Wrap(base, goerrors.CategoryValidation, "front matter validation failed").
		WithTextCode(frontMatterInvalidCode)
}
