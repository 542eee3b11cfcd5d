package main

import (
	"encoding/json"
	"fmt"

	"formsuggest/internal/field"
	"formsuggest/internal/htmldoc"
	"formsuggest/internal/popup"
	"formsuggest/internal/purpose"
	"formsuggest/internal/question"
	"formsuggest/internal/suggest"
	"formsuggest/internal/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// fieldFlags describe a field on the command line, or select one from --page.
type fieldFlags struct {
	page        string
	selector    string
	tag         string
	id          string
	name        string
	className   string
	fieldType   string
	placeholder string
	ariaLabel   string
	title       string
	value       string
}

func (ff *fieldFlags) register(fs *pflag.FlagSet, withPage bool) {
	if withPage {
		fs.StringVar(&ff.page, "page", "", "Saved HTML page the field lives in")
		fs.StringVar(&ff.selector, "select", "", "Selector of the field inside --page (e.g. #email)")
	}
	fs.StringVar(&ff.tag, "tag", "input", "Element tag: input or textarea")
	fs.StringVar(&ff.id, "id", "", "id attribute")
	fs.StringVar(&ff.name, "name", "", "name attribute")
	fs.StringVar(&ff.className, "class", "", "class attribute")
	fs.StringVar(&ff.fieldType, "type", "", "type attribute")
	fs.StringVar(&ff.placeholder, "placeholder", "", "placeholder attribute")
	fs.StringVar(&ff.ariaLabel, "aria-label", "", "aria-label attribute")
	fs.StringVar(&ff.title, "title", "", "title attribute")
	fs.StringVar(&ff.value, "value", "", "Current value")
}

func (ff *fieldFlags) field() field.Field {
	return field.Field{
		Tag:         ff.tag,
		ID:          ff.id,
		Name:        ff.name,
		ClassName:   ff.className,
		Type:        ff.fieldType,
		Value:       ff.value,
		Placeholder: ff.placeholder,
		AriaLabel:   ff.ariaLabel,
		Title:       ff.title,
		Visible:     true,
	}
}

// resolve loads --page, if any, and picks the field: --select first, then
// the element with --id, then the flags as given.
func (ff *fieldFlags) resolve() (*htmldoc.Document, field.Field, error) {
	if ff.page == "" {
		doc, err := htmldoc.ParseString("")
		return doc, ff.field(), err
	}
	doc, err := htmldoc.Load(ff.page)
	if err != nil {
		return nil, field.Field{}, fmt.Errorf("failed to load page: %w", err)
	}

	sel := ff.selector
	if sel == "" && ff.id != "" {
		sel = "#" + ff.id
	}
	if sel == "" {
		return doc, ff.field(), nil
	}
	f, err := doc.Find(sel)
	if err != nil {
		if ff.selector != "" {
			return nil, field.Field{}, err
		}
		return doc, ff.field(), nil
	}
	if ff.value != "" {
		f.Value = ff.value
	}
	return doc, f, nil
}

var (
	classifyFlags fieldFlags
	questionFlags fieldFlags
	suggestFlags  fieldFlags
	previewFlags  fieldFlags
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Infer a field's purpose from its attributes",
	Example: `  formsuggest classify --name user_email --type text
  formsuggest classify --tag textarea --placeholder "Tell us about yourself"`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

var extractCmd = &cobra.Command{
	Use:   "extract [file.html]",
	Short: "Print the page excerpt used as suggestion context",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Resolve the question a field asks",
	Long: `Resolves the question from the field's label, placeholder, name or
aria-label, and asks the model to phrase one when none is present.`,
	Args: cobra.NoArgs,
	RunE: runQuestion,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Generate a suggestion for a field and print it as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSuggest,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the suggestion popup for a field in the terminal",
	Long: `Opens the popup card in the terminal.

Keys:
  enter  accept and print the answer
  esc    dismiss
  x      dismiss and stop suggesting for this field`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	classifyFlags.register(classifyCmd.Flags(), false)
	questionFlags.register(questionCmd.Flags(), true)
	suggestFlags.register(suggestCmd.Flags(), true)
	previewFlags.register(previewCmd.Flags(), true)
}

func runClassify(cmd *cobra.Command, args []string) error {
	res := purpose.Classify(classifyFlags.field().Attributes())
	logger.Debug("Classified", zap.Any("attributes", res.Attributes))
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Purpose, res.Confidence)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	doc, err := htmldoc.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	ctx, cancel := commandContext()
	defer cancel()

	fmt.Fprintln(cmd.OutOrStdout(), newExtractor().Extract(ctx, doc))
	return nil
}

func runQuestion(cmd *cobra.Command, args []string) error {
	doc, f, err := questionFlags.resolve()
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	fmt.Fprintln(cmd.OutOrStdout(), question.NewResolver(doc, svc).Resolve(ctx, f))
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	doc, f, err := suggestFlags.resolve()
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	var mainContent string
	if settings, err := openSettings(); err != nil {
		logger.Warn("Suggesting without main content", zap.Error(err))
	} else {
		defer settings.Close()
		if mainContent, err = settings.MainContent(ctx); err != nil {
			logger.Warn("Failed to read main content", zap.Error(err))
		}
	}

	in := suggest.BuildInput(ctx, f, doc, newExtractor(), svc, mainContent)
	logger.Debug("Suggestion input",
		zap.String("question", in.Question),
		zap.String("purpose", in.Purpose),
		zap.Int("excerpt_chars", len(in.PageExcerpt)))

	res := svc.Suggest(ctx, in)
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	doc, f, err := previewFlags.resolve()
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	ctx, cancel := signalContext()
	defer cancel()

	host := tui.NewHost(doc, f)
	ctrl := popup.NewController(host, svc, settings,
		popup.WithExtractor(newExtractor()),
		popup.WithShortcutHint(appCfg.Popup.Shortcut.String()),
		popup.WithOffset(float64(appCfg.Popup.OffsetPx)),
	)

	outcome, err := tui.Run(ctx, ctrl, host, tui.RunOptions{Input: cmd.InOrStdin(), Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	switch {
	case outcome.Accepted:
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Value)
	case outcome.Disabled:
		logger.Info("Suggestions disabled for field", zap.String("field", f.Identifier()))
	}
	return nil
}
