package server

import (
	"fmt"

	"formsuggest/internal/htmldoc"
	"formsuggest/internal/logging"
	"formsuggest/internal/purpose"
	"formsuggest/internal/suggest"

	"github.com/gofiber/fiber/v2"
)

var errNoSettings = fiber.NewError(fiber.StatusServiceUnavailable, "settings store is not configured")

// parse decodes and validates the request body into req.
func parse(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
	}
	return ValidateRequest(req)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(SuccessResponse("ok", nil))
}

func (s *Server) classify(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	res := purpose.Classify(req.Attributes)
	return c.JSON(SuccessResponse("classified", ClassifyResponse(res)))
}

func (s *Server) question(c *fiber.Ctx) error {
	var req QuestionRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	q := s.deps.Suggester.GenerateQuestion(c.UserContext(), req.Purpose, req.Type)
	return c.JSON(SuccessResponse("question generated", QuestionResponse{Question: q}))
}

func (s *Server) suggest(c *fiber.Ctx) error {
	var req SuggestRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	doc, err := htmldoc.ParseString(req.HTML)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var mainContent string
	if s.deps.Settings != nil {
		if mainContent, err = s.deps.Settings.MainContent(ctx); err != nil {
			logging.ServerError("read main content: %v", err)
		}
	}

	in := suggest.BuildInput(ctx, req.Field, doc, s.deps.Extractor, s.deps.Suggester, mainContent)
	if req.Question != "" {
		in.Question = req.Question
	}
	res := s.deps.Suggester.Suggest(ctx, in)
	if res.Failed() {
		logging.ServerError("suggestion failed for %q: %s", in.Purpose, res.Explanation)
	}
	return c.JSON(SuccessResponse("suggestion generated", SuggestResponse{Input: in, Result: res}))
}

func (s *Server) getContent(c *fiber.Ctx) error {
	if s.deps.Settings == nil {
		return errNoSettings
	}
	main, err := s.deps.Settings.MainContent(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse("main content", ContentResponse{MainContent: main}))
}

func (s *Server) putContent(c *fiber.Ctx) error {
	if s.deps.Settings == nil {
		return errNoSettings
	}
	var req ContentRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	if err := s.deps.Settings.SetMainContent(ctx, req.MainContent); err != nil {
		return err
	}
	main, err := s.deps.Settings.MainContent(ctx)
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse("main content saved", ContentResponse{MainContent: main}))
}

func (s *Server) getSettings(c *fiber.Ctx) error {
	if s.deps.Settings == nil {
		return errNoSettings
	}
	enabled, err := s.deps.Settings.SuggestionsEnabled(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse("settings", SettingsResponse{SuggestionsEnabled: enabled}))
}

func (s *Server) putSettings(c *fiber.Ctx) error {
	if s.deps.Settings == nil {
		return errNoSettings
	}
	var req SettingsRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if err := s.deps.Settings.SetSuggestionsEnabled(c.UserContext(), *req.SuggestionsEnabled); err != nil {
		return err
	}
	return c.JSON(SuccessResponse("settings saved", SettingsResponse{SuggestionsEnabled: *req.SuggestionsEnabled}))
}
