package preprocesscmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	supportsRendererMessageType = "cjk.preprocess.supports_renderer"
	joinDocumentMessageType     = "cjk.preprocess.join_document"
	preprocessBookMessageType   = "cjk.preprocess.book"
)

// SupportsRendererCommand asks whether the preprocessor handles Renderer.
// The handler answers by returning nil or ErrRendererUnsupported.
type SupportsRendererCommand struct {
	// Renderer is the mdBook renderer name, e.g. "html".
	Renderer string `json:"renderer"`
}

// Type implements command.Message.
func (SupportsRendererCommand) Type() string { return supportsRendererMessageType }

// Validate ensures a renderer name is present.
func (cmd SupportsRendererCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Renderer, validation.Required, validation.By(notBlank(
			"cjk.preprocess.supports_renderer.renderer_required", "renderer is required",
		))),
	)
}

// JoinDocumentCommand joins a single markdown document read from Input and
// writes the result to Output.
type JoinDocumentCommand struct {
	Input  io.Reader `json:"-"`
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (JoinDocumentCommand) Type() string { return joinDocumentMessageType }

// Validate ensures both streams are wired.
func (cmd JoinDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Input, validation.NotNil),
		validation.Field(&cmd.Output, validation.NotNil),
	)
}

// PreprocessBookCommand runs the mdBook preprocessor protocol: the
// [context, book] pair is read from Input, the processed book is written to
// Output and user facing warnings go to Diagnostics.
type PreprocessBookCommand struct {
	Input       io.Reader `json:"-"`
	Output      io.Writer `json:"-"`
	Diagnostics io.Writer `json:"-"`
}

// Type implements command.Message.
func (PreprocessBookCommand) Type() string { return preprocessBookMessageType }

// Validate ensures the protocol streams are wired. Diagnostics is optional.
func (cmd PreprocessBookCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Input, validation.NotNil),
		validation.Field(&cmd.Output, validation.NotNil),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
