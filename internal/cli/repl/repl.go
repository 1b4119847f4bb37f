// Package repl is the interactive shell. Raw API commands go through the
// command registry; the submission lifecycle commands drive the typed
// dispatcher and poller so validation and polling behave exactly as the
// library does.
package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ojcli/internal/cli/command"
	"ojcli/internal/client/judge"
	"ojcli/internal/client/session"
	"ojcli/internal/client/state"
	"ojcli/internal/client/submit"
	"ojcli/internal/client/transport"
	"ojcli/internal/client/verdict"
	pkgerrors "ojcli/pkg/errors"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

const prompt = "ojcli> "

// Session holds REPL state.
type Session struct {
	client      *transport.Client
	api         *judge.Client
	dispatcher  *submit.Dispatcher
	poller      *submit.Poller
	commands    map[string]command.Command
	sess        *session.Session
	clientState *state.State
	statePath   string
	prettyJSON  bool
	rl          *readline.Instance
}

// New creates a REPL session over an already wired client stack.
func New(client *transport.Client, api *judge.Client, dispatcher *submit.Dispatcher, poller *submit.Poller,
	sess *session.Session, clientState *state.State, statePath string, prettyJSON bool) *Session {
	return &Session{
		client:      client,
		api:         api,
		dispatcher:  dispatcher,
		poller:      poller,
		commands:    command.Registry(),
		sess:        sess,
		clientState: clientState,
		statePath:   statePath,
		prettyJSON:  prettyJSON,
	}
}

// Run drives the interactive loop until exit or EOF. The active watch, if
// any, is cancelled on the way out so no ticker outlives the shell.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return fmt.Errorf("init readline failed: %w", err)
	}
	s.rl = rl
	defer func() { _ = rl.Close() }()
	defer s.poller.Cancel()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF || err != nil {
			s.printLine("bye")
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		handled, quit := s.handleSystemCommand(line)
		if quit {
			return nil
		}
		if handled {
			continue
		}
		if err := s.handleCommand(ctx, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func (s *Session) handleSystemCommand(line string) (handled, quit bool) {
	switch line {
	case "exit", "quit":
		s.printLine("bye")
		return true, true
	case "help":
		s.printHelp()
		return true, false
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true, false
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true, false
	}
	return false, false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set base|timeout|token|theme|fontsize|editor-language|linenumbers")
		return
	}
	if len(parts) < 2 {
		s.printLine("usage: set %s <value>", parts[0])
		return
	}
	value := parts[1]
	switch parts[0] {
	case "base":
		s.client.SetBaseURL(value)
		s.printLine("base set to %s", value)
	case "timeout":
		dur, err := time.ParseDuration(value)
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.client.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	case "token":
		s.sess.SetTokens(session.Tokens{Access: value, Refresh: s.sess.RefreshToken()}, s.sess.Username())
		s.printLine("token updated")
	case "theme":
		s.clientState.Editor.Theme = value
		s.persistState()
		s.printLine("theme set to %s", value)
	case "fontsize":
		var size int
		if _, err := fmt.Sscanf(value, "%d", &size); err != nil || size <= 0 {
			s.printLine("invalid font size: %s", value)
			return
		}
		s.clientState.Editor.FontSize = size
		s.persistState()
		s.printLine("font size set to %d", size)
	case "editor-language":
		if !submit.SupportedLanguage(value) {
			s.printLine("unsupported language: %s", value)
			return
		}
		s.clientState.Editor.Language = value
		s.persistState()
		s.printLine("editor language set to %s", value)
	case "linenumbers":
		s.clientState.Editor.LineNumbers = value == "on" || value == "true" || value == "1"
		s.persistState()
		s.printLine("line numbers: %v", s.clientState.Editor.LineNumbers)
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "token":
		token := s.sess.AccessToken()
		if token == "" {
			s.printLine("token: <empty>")
			return
		}
		if len(token) > 12 {
			token = token[:6] + "..." + token[len(token)-4:]
		}
		s.printLine("token: %s", token)
		if expiry, ok := s.sess.AccessExpiry(); ok {
			s.printLine("expires: %s", expiry.Format(time.RFC3339))
		}
	case "session":
		if !s.sess.Authenticated() {
			s.printLine("not logged in")
			return
		}
		s.printLine("user: %s", s.sess.Username())
	case "editor":
		s.printLine("theme=%s language=%s fontsize=%d linenumbers=%v",
			s.clientState.Editor.Theme, s.clientState.Editor.Language,
			s.clientState.Editor.FontSize, s.clientState.Editor.LineNumbers)
	case "config":
		s.printLine("statePath: %s", s.statePath)
	default:
		s.printLine("usage: show token|session|editor|config")
	}
}

func (s *Session) handleCommand(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	service := tokens[0]
	action := tokens[1]
	params := command.Params{}
	for _, token := range tokens[2:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s", token)
		}
		params.Set(parts[0], parts[1])
	}

	// Lifecycle commands use the typed stack; everything else is a raw
	// registry request.
	switch service + " " + action {
	case "user login":
		return s.handleLogin(ctx, params)
	case "user logout":
		return s.handleLogout(ctx)
	case "submit create":
		return s.handleSubmitCreate(ctx, params)
	case "submit watch":
		return s.handleSubmitWatch(ctx, params)
	case "code save":
		return s.handleCodeSave(params)
	case "code show":
		return s.handleCodeShow(params)
	}

	key := fmt.Sprintf("%s %s", service, action)
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s %s", service, action)
	}
	s.applyParamShortcuts(&cmd, params)
	if err := s.promptMissing(&cmd, params); err != nil {
		return err
	}
	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := s.client.Do(ctx, req.Method, req.Path, req.Body, &raw); err != nil {
		return err
	}
	s.renderJSON(raw)
	s.captureTokens(cmd, raw)
	return nil
}

func (s *Session) handleLogin(ctx context.Context, params command.Params) error {
	email, err := s.requireParam(params, "email")
	if err != nil {
		return err
	}
	password, err := s.requireParam(params, "password")
	if err != nil {
		return err
	}
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.sess.SetTokens(session.Tokens{Access: result.AccessToken, Refresh: result.RefreshToken}, result.Username)
	s.printLine("logged in as %s", result.Username)
	if !result.IsVerified {
		s.printLine("note: email not verified yet")
	}
	return nil
}

func (s *Session) handleLogout(ctx context.Context) error {
	if _, err := s.api.Logout(ctx); err != nil && !pkgerrors.Is(err, pkgerrors.NotAuthenticated) {
		s.printLine("warning: server logout failed: %v", err)
	}
	s.sess.Clear()
	s.printLine("logged out")
	return nil
}

func (s *Session) handleSubmitCreate(ctx context.Context, params command.Params) error {
	slug, err := s.requireParam(params, "slug")
	if err != nil {
		return err
	}
	code := params.Get("code")
	if code == "" && params.Get("source_file") != "" {
		code, err = command.ReadFile(params.Get("source_file"))
		if err != nil {
			return err
		}
	}
	if code == "" {
		if cached, ok := s.clientState.CachedCode(slug); ok {
			code = cached
			s.printLine("using cached code for %s", slug)
		}
	}
	language := params.Get("language")
	if language == "" {
		language = s.clientState.Editor.Language
	}

	result, err := s.dispatcher.Submit(ctx, submit.Request{
		ProblemSlug: slug,
		Code:        code,
		Language:    language,
		Username:    s.sess.Username(),
	})
	if err != nil {
		return err
	}
	s.printLine("submission %d created, status: %s", result.ID, verdict.Label(result.Status))

	if params.Get("watch") == "false" {
		return nil
	}
	return s.watch(ctx, result.ID)
}

func (s *Session) handleSubmitWatch(ctx context.Context, params command.Params) error {
	rawID, err := s.requireParam(params, "id")
	if err != nil {
		return err
	}
	id, err := command.ParseInt64(rawID)
	if err != nil {
		return fmt.Errorf("invalid submission id: %w", err)
	}
	return s.watch(ctx, id)
}

// watch renders poll updates until the verdict is terminal or the watch
// gives up.
func (s *Session) watch(ctx context.Context, id int64) error {
	w := s.poller.Watch(ctx, id)
	s.printLine("watching submission %d ...", id)
	for update := range w.Updates() {
		if update.Err != nil {
			if update.Terminal {
				return update.Err
			}
			s.printLine("poll failed (will retry): %v", update.Err)
			continue
		}
		s.renderSubmission(update.Submission)
		if update.Terminal {
			return nil
		}
	}
	return nil
}

func (s *Session) renderSubmission(sub judge.Submission) {
	label := verdict.Label(sub.Status)
	switch verdict.SeverityOf(sub.Status) {
	case verdict.SeveritySuccess:
		s.printLine("status: %s ✓", label)
	case verdict.SeverityDestructive:
		s.printLine("status: %s ✗", label)
	default:
		s.printLine("status: %s", label)
	}
	if sub.TimeTakenMs != nil {
		s.printLine("  time: %d ms", *sub.TimeTakenMs)
	}
	if sub.MemoryUsedMb != nil {
		s.printLine("  memory: %d MB", *sub.MemoryUsedMb)
	}
	if sub.Output != "" {
		s.printLine("  output: %s", sub.Output)
	}
}

func (s *Session) handleCodeSave(params command.Params) error {
	slug, err := s.requireParam(params, "slug")
	if err != nil {
		return err
	}
	file, err := s.requireParam(params, "file")
	if err != nil {
		return err
	}
	code, err := command.ReadFile(file)
	if err != nil {
		return err
	}
	s.clientState.SetCachedCode(slug, code)
	s.persistState()
	s.printLine("cached %d bytes for %s", len(code), slug)
	return nil
}

func (s *Session) handleCodeShow(params command.Params) error {
	slug, err := s.requireParam(params, "slug")
	if err != nil {
		return err
	}
	code, ok := s.clientState.CachedCode(slug)
	if !ok {
		s.printLine("no cached code for %s", slug)
		return nil
	}
	s.printLine("%s", code)
	return nil
}

func (s *Session) applyParamShortcuts(cmd *command.Command, params command.Params) {
	if cmd.Service == "ai" && cmd.Action == "hint" {
		if params.Get("code_file") != "" && params.Get("code") == "" {
			params.Set("code", "_file_")
		}
	}
}

func (s *Session) promptMissing(cmd *command.Command, params command.Params) error {
	for _, field := range cmd.Fields {
		if !field.Required {
			continue
		}
		if params.Has(field.Name) && params.Get(field.Name) != "" {
			continue
		}
		value, err := s.promptValue(field.Prompt)
		if err != nil {
			return err
		}
		params.Set(field.Name, value)
	}
	return nil
}

func (s *Session) requireParam(params command.Params, name string) (string, error) {
	if value := params.Get(name); value != "" {
		return value, nil
	}
	return s.promptValue(name)
}

func (s *Session) promptValue(name string) (string, error) {
	if s.rl == nil {
		return "", fmt.Errorf("missing required param: %s", name)
	}
	s.rl.SetPrompt(name + ": ")
	defer s.rl.SetPrompt(prompt)
	line, err := s.rl.Readline()
	if err != nil {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) renderJSON(raw json.RawMessage) {
	if len(raw) == 0 {
		s.printLine("ok")
		return
	}
	if s.prettyJSON {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err == nil {
			formatted, _ := json.MarshalIndent(decoded, "", "  ")
			s.printLine("%s", string(formatted))
			return
		}
	}
	s.printLine("%s", string(raw))
}

// captureTokens installs tokens from raw auth responses so a manual
// "user refresh" keeps the session in sync.
func (s *Session) captureTokens(cmd command.Command, raw []byte) {
	if cmd.Service != "user" {
		return
	}
	switch cmd.Action {
	case "refresh":
		var resp struct {
			Access string `json:"access"`
		}
		if err := json.Unmarshal(raw, &resp); err == nil && resp.Access != "" {
			s.sess.SetAccessToken(resp.Access)
		}
	case "register":
		// Registration returns no tokens; login follows verification.
	}
}

func (s *Session) persistState() {
	if err := state.Save(s.statePath, *s.clientState); err != nil {
		s.printLine("warning: save state failed: %v", err)
	}
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set base|timeout|token|theme|fontsize|editor-language|linenumbers | show token|session|editor|config")
	s.printLine("examples:")
	s.printLine("  user register username=demo email=demo@example.com password=secret")
	s.printLine("  user login email=demo@example.com password=secret")
	s.printLine("  problem list")
	s.printLine("  submit create slug=two-sum language=python source_file=./solution.py")
	s.printLine("  submit watch id=42")
	s.printLine("  submit history slug=two-sum username=demo")
	s.printLine("  ai hint problem_id=1 language=python code_file=./solution.py")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stdout, format+"\n", args...)
}
