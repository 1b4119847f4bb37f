package command

import (
	"fmt"
	"net/url"
	"strings"
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "user",
			Action:       "register",
			Method:       "POST",
			PathTemplate: "/api/users/register/",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "username", Prompt: "username", Type: FieldString, Required: true},
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
				{Name: "institute", Prompt: "institute", Type: FieldString, Required: false},
				{Name: "bio", Prompt: "bio", Type: FieldString, Required: false},
			},
		},
		{
			Service:      "user",
			Action:       "login",
			Method:       "POST",
			PathTemplate: "/api/users/login/",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "user",
			Action:       "refresh",
			Method:       "POST",
			PathTemplate: "/api/users/token/refresh/",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "refresh", Aliases: []string{"refresh_token"}, Prompt: "refresh token", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "user",
			Action:       "logout",
			Method:       "POST",
			PathTemplate: "/api/users/logout/",
			RequiresAuth: true,
		},
		{
			Service:      "user",
			Action:       "resend-verify",
			Method:       "POST",
			PathTemplate: "/api/users/resend-verify/",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "email", Prompt: "email", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "user",
			Action:       "verify-email",
			Method:       "GET",
			PathTemplate: "/api/users/email-verify/:uid/:token/",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "uid", Prompt: "uid", Type: FieldString, Required: true},
				{Name: "token", Prompt: "token", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "user",
			Action:       "submissions",
			Method:       "GET",
			PathTemplate: "/api/users/:username/submissions/",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "username", Prompt: "username", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "problem",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/problems/",
			RequiresAuth: false,
		},
		{
			Service:      "problem",
			Action:       "get",
			Method:       "GET",
			PathTemplate: "/api/problems/:slug/description/",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "slug", Prompt: "problem slug", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "submit",
			Action:       "status",
			Method:       "GET",
			PathTemplate: "/api/submissions/:id/",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "submission_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "submit",
			Action:       "history",
			Method:       "GET",
			PathTemplate: "/api/problems/:slug/submissions/:username/",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "slug", Prompt: "problem slug", Type: FieldString, Required: true},
				{Name: "username", Prompt: "username", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "ai",
			Action:       "hint",
			Method:       "POST",
			PathTemplate: "/api/ai/get-hint/",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "problem_id", Prompt: "problem_id", Type: FieldInt64, Required: true},
				{Name: "code", Prompt: "code", Type: FieldString, Required: true},
				{Name: "language", Prompt: "language", Type: FieldString, Required: true},
				{Name: "code_file", Prompt: "code_file", Type: FieldFile, Required: false},
			},
		},
		{
			Service:      "ai",
			Action:       "explain",
			Method:       "POST",
			PathTemplate: "/api/ai/explain-problem/:id/",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "problem_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "ai",
			Action:       "analyze",
			Method:       "POST",
			PathTemplate: "/api/ai/analyze-submission/:id/",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Prompt: "problem_id", Type: FieldInt64, Required: true},
				{Name: "submission_id", Prompt: "submission_id", Type: FieldInt64, Required: true},
			},
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		key := fmt.Sprintf("%s %s", cmd.Service, cmd.Action)
		result[key] = cmd
	}
	return result
}

// BuildRequest creates HTTP request spec based on command.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)
	path, err := buildPath(cmd.PathTemplate, params)
	if err != nil {
		return RequestSpec{}, err
	}

	var body interface{}
	if cmd.Method != "GET" && cmd.Method != "DELETE" {
		body, err = buildPayload(cmd, params)
		if err != nil {
			return RequestSpec{}, err
		}
	}

	return RequestSpec{
		Method: cmd.Method,
		Path:   path,
		Body:   body,
	}, nil
}

func buildPath(template string, params Params) (string, error) {
	path := template
	for _, key := range []string{"id", "slug", "username", "uid", "token"} {
		placeholder := ":" + key
		if strings.Contains(path, placeholder) {
			value := params.Get(key)
			if value == "" {
				return "", fmt.Errorf("missing path parameter: %s", key)
			}
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
		}
	}
	return path, nil
}

func buildPayload(cmd Command, params Params) (interface{}, error) {
	switch cmd.Service {
	case "user":
		switch cmd.Action {
		case "register":
			payload := map[string]string{
				"username": params.Get("username"),
				"email":    params.Get("email"),
				"password": params.Get("password"),
			}
			if params.Get("institute") != "" {
				payload["institute"] = params.Get("institute")
			}
			if params.Get("bio") != "" {
				payload["bio"] = params.Get("bio")
			}
			return payload, nil
		case "login":
			return map[string]string{
				"email":    params.Get("email"),
				"password": params.Get("password"),
			}, nil
		case "refresh":
			return map[string]string{
				"refresh": params.Get("refresh"),
			}, nil
		case "logout":
			return map[string]string{}, nil
		case "resend-verify":
			return map[string]string{
				"email": params.Get("email"),
			}, nil
		}
	case "ai":
		switch cmd.Action {
		case "hint":
			return buildHintPayload(params)
		case "explain":
			return map[string]string{}, nil
		case "analyze":
			submissionID, err := ParseInt64(params.Get("submission_id"))
			if err != nil {
				return nil, fmt.Errorf("invalid submission_id: %w", err)
			}
			return map[string]interface{}{
				"submission_id": submissionID,
			}, nil
		}
	}
	return nil, nil
}

func buildHintPayload(params Params) (interface{}, error) {
	problemID, err := ParseInt64(params.Get("problem_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid problem_id: %w", err)
	}
	code := params.Get("code")
	if (code == "" || code == "_file_") && params.Get("code_file") != "" {
		code, err = ReadFile(params.Get("code_file"))
		if err != nil {
			return nil, err
		}
	}
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return map[string]interface{}{
		"problem_id": problemID,
		"code":       code,
		"language":   params.Get("language"),
	}, nil
}
