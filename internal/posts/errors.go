package posts

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// ErrDuplicateSlug marks two source files resolving to the same slug. The
// build aborts rather than letting one post silently shadow the other.
var ErrDuplicateSlug = errors.New("posts: duplicate slug")

// ErrInvalidPost marks a post that failed model validation after loading.
var ErrInvalidPost = errors.New("posts: invalid post")

const (
	duplicateSlugCode = "PRESS_DUPLICATE_SLUG"
	invalidPostCode   = "PRESS_POST_INVALID"
)

func duplicateSlug(slugValue, firstPath, secondPath string) error {
	base := fmt.Errorf("%w: %q claimed by both %s and %s", ErrDuplicateSlug, slugValue, firstPath, secondPath)
	return goerrors.Wrap(base, goerrors.CategoryValidation, "post slugs must be unique").
		WithTextCode(duplicateSlugCode)
}

func invalidPost(path string, err error) error {
	base := fmt.Errorf("%w: %s: %v", ErrInvalidPost, path, err)
	return goerrors.Wrap(base, goerrors.CategoryValidation, "post validation failed").
		WithTextCode(invalidPostCode)
}
