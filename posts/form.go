package posts

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/go-blog-client/internal/utils"
)

const (
	TitleMaxLength   = 100
	ExcerptMaxLength = 200
	ContentMaxLength = 50000
	TagsMax          = 10
	StacksMax        = 5
)

var (
	ErrTagLimit     = fmt.Errorf("at most %d tags can be added", TagsMax)
	ErrStackLimit   = fmt.Errorf("at most %d stacks can be selected", StacksMax)
	ErrDuplicateTag = errors.New("tag already added")
	ErrEmptyTag     = errors.New("tag is empty")
	ErrUnknownField = errors.New("unknown form field")
)

// Field names a form field. The names match the request JSON so server field
// errors land on the same keys.
type Field string

const (
	FieldTitle    Field = "title"
	FieldExcerpt  Field = "excerpt"
	FieldPostType Field = "postType"
	FieldContent  Field = "content"
	FieldStatus   Field = "status"
	FieldStacks   Field = "stacks"
	FieldTags     Field = "tags"
)

// Form is a post being written or edited. Editing a field clears the error
// recorded against it.
type Form struct {
	Title    string
	Excerpt  string
	PostType PostType
	Content  string
	Status   Status
	Stacks   []string
	Tags     []string

	fieldErrors map[string]string
}

// NewForm returns an empty public CORE post.
func NewForm() *Form {
	return &Form{PostType: TypeCore, Status: StatusPublic}
}

// FromDetail loads an existing post for editing.
func FromDetail(d *Detail) *Form {
	return &Form{
		Title:    d.Title,
		Excerpt:  d.Excerpt,
		PostType: d.PostType,
		Content:  d.Content,
		Status:   d.Status,
		Stacks:   slices.Clone(d.Stacks),
		Tags:     slices.Clone(d.Tags),
	}
}

// UpdateField sets a text field. Stacks and tags have their own methods.
func (f *Form) UpdateField(field Field, value string) error {
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldExcerpt:
		f.Excerpt = value
	case FieldContent:
		f.Content = value
	case FieldPostType:
		t, err := ParsePostType(value)
		if err != nil {
			return err
		}
		f.PostType = t
	case FieldStatus:
		s, err := ParseStatus(value)
		if err != nil {
			return err
		}
		f.Status = s
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	f.clearError(field)
	return nil
}

func (f *Form) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	if len(f.Tags) >= TagsMax {
		return ErrTagLimit
	}
	if slices.Contains(f.Tags, tag) {
		return ErrDuplicateTag
	}
	f.Tags = append(f.Tags, tag)
	f.clearError(FieldTags)
	return nil
}

func (f *Form) RemoveTag(tag string) {
	f.Tags = slices.DeleteFunc(f.Tags, func(t string) bool { return t == tag })
}

// AddStack selects a stack. Selecting one twice is a no-op.
func (f *Form) AddStack(stack string) error {
	if slices.Contains(f.Stacks, stack) {
		return nil
	}
	if len(f.Stacks) >= StacksMax {
		return ErrStackLimit
	}
	f.Stacks = append(f.Stacks, stack)
	f.clearError(FieldStacks)
	return nil
}

func (f *Form) RemoveStack(stack string) {
	f.Stacks = slices.DeleteFunc(f.Stacks, func(s string) bool { return s == stack })
}

func (f *Form) ToggleStatus() {
	f.Status = f.Status.Toggled()
}

// Validate records and returns the field errors, or nil when the form can be
// submitted.
func (f *Form) Validate() map[string]string {
	errs := map[string]string{}

	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		errs[string(FieldTitle)] = "title is required"
	case utf8.RuneCountInString(title) > TitleMaxLength:
		errs[string(FieldTitle)] = fmt.Sprintf("title must be at most %d characters", TitleMaxLength)
	}
	if utf8.RuneCountInString(f.Excerpt) > ExcerptMaxLength {
		errs[string(FieldExcerpt)] = fmt.Sprintf("excerpt must be at most %d characters", ExcerptMaxLength)
	}
	if !f.PostType.Valid() {
		errs[string(FieldPostType)] = "post type is required"
	}
	if strings.TrimSpace(f.Content) == "" {
		errs[string(FieldContent)] = "content is required"
	} else if msg := ContentLengthError(f.Content); msg != "" {
		errs[string(FieldContent)] = msg
	}
	if len(f.Tags) > TagsMax {
		errs[string(FieldTags)] = ErrTagLimit.Error()
	}
	if len(f.Stacks) > StacksMax {
		errs[string(FieldStacks)] = ErrStackLimit.Error()
	}

	if len(errs) == 0 {
		f.fieldErrors = nil
		return nil
	}
	f.fieldErrors = errs
	return errs
}

// SetFieldErrors records errors reported by the server.
func (f *Form) SetFieldErrors(errs map[string]string) {
	if len(errs) == 0 {
		f.fieldErrors = nil
		return
	}
	f.fieldErrors = make(map[string]string, len(errs))
	for k, v := range errs {
		f.fieldErrors[k] = v
	}
}

// FieldErrors returns a copy of the outstanding field errors.
func (f *Form) FieldErrors() map[string]string {
	if len(f.fieldErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

func (f *Form) clearError(field Field) {
	delete(f.fieldErrors, string(field))
	if len(f.fieldErrors) == 0 {
		f.fieldErrors = nil
	}
}

// Request builds the create/update body.
func (f *Form) Request() Request {
	return Request{
		Title:    strings.TrimSpace(f.Title),
		Excerpt:  strings.TrimSpace(f.Excerpt),
		PostType: f.PostType,
		Content:  f.Content,
		Status:   utils.Ptr(f.Status),
		Stacks:   slices.Clone(f.Stacks),
		Tags:     slices.Clone(f.Tags),
	}
}

// ContentLengthError returns a message when content is over the limit, or "".
func ContentLengthError(content string) string {
	if n := utf8.RuneCountInString(content); n > ContentMaxLength {
		return fmt.Sprintf("content is %d characters, at most %d allowed", n, ContentMaxLength)
	}
	return ""
}

// StatusOrDefault reads an optional status, treating a missing one as public.
func StatusOrDefault(s *Status) Status {
	return utils.ValueOr(s, StatusPublic)
}
