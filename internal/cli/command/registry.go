package command

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "team",
			Action:       "register",
			Method:       "POST",
			PathTemplate: "/api/v1/teams/register",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "name", Prompt: "team name", Type: FieldString, Required: true},
				{Name: "email", Prompt: "email", Type: FieldString, Required: false},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "team",
			Action:       "login",
			Method:       "POST",
			PathTemplate: "/api/v1/teams/login",
			RequiresAuth: false,
			Fields: []Field{
				{Name: "name", Prompt: "team name", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "team",
			Action:       "me",
			Method:       "GET",
			PathTemplate: "/api/v1/teams/me",
			RequiresAuth: true,
		},
		{
			Service:      "challenge",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/v1/challenges",
			QueryFields:  []string{"active"},
			RequiresAuth: true,
			Fields: []Field{
				{Name: "active", Prompt: "active only (true/false)", Type: FieldString, Required: false},
			},
		},
		{
			Service:      "challenge",
			Action:       "get",
			Method:       "GET",
			PathTemplate: "/api/v1/challenges/:id",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"challenge_id"}, Prompt: "challenge_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "challenge",
			Action:       "create",
			Method:       "POST",
			PathTemplate: "/api/v1/admin/challenges",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "body_file", Prompt: "challenge json file", Type: FieldFile, Required: true},
			},
		},
		{
			Service:      "challenge",
			Action:       "update",
			Method:       "PUT",
			PathTemplate: "/api/v1/admin/challenges/:id",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"challenge_id"}, Prompt: "challenge_id", Type: FieldInt64, Required: true},
				{Name: "body_file", Prompt: "challenge json file", Type: FieldFile, Required: true},
			},
		},
		{
			Service:      "challenge",
			Action:       "flag",
			Method:       "POST",
			PathTemplate: "/api/v1/challenges/:id/flag",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"challenge_id"}, Prompt: "challenge_id", Type: FieldInt64, Required: true},
				{Name: "flag", Prompt: "flag", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "submission",
			Action:       "create",
			Method:       "POST",
			PathTemplate: "/api/v1/submissions",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "challenge_id", Prompt: "challenge_id", Type: FieldInt64, Required: true},
				{Name: "language_id", Prompt: "language_id", Type: FieldInt, Required: true},
				{Name: "source_code", Prompt: "source_code", Type: FieldString, Required: true},
				{Name: "source_file", Prompt: "source_file", Type: FieldFile, Required: false},
			},
		},
		{
			Service:      "submission",
			Action:       "get",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions/:id",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"submission_id"}, Prompt: "submission_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "submission",
			Action:       "status",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions/:id/status",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"submission_id"}, Prompt: "submission_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "submission",
			Action:       "source",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions/:id/source",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"submission_id"}, Prompt: "submission_id", Type: FieldInt64, Required: true},
			},
		},
		{
			Service:      "submission",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/v1/submissions",
			QueryFields:  []string{"challenge_id", "limit"},
			RequiresAuth: true,
			Fields: []Field{
				{Name: "challenge_id", Prompt: "challenge_id", Type: FieldInt64, Required: true},
				{Name: "limit", Prompt: "limit", Type: FieldInt, Required: false},
			},
		},
		{
			Service:      "judge",
			Action:       "languages",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/languages",
			RequiresAuth: false,
		},
		{
			Service:      "judge",
			Action:       "statuses",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/statuses",
			RequiresAuth: false,
		},
		{
			Service:      "judge",
			Action:       "health",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/health",
			RequiresAuth: false,
		},
		{
			Service:      "judge",
			Action:       "submit",
			Method:       "POST",
			PathTemplate: "/api/v1/admin/judge/submissions",
			QueryFields:  []string{"wait"},
			RequiresAuth: true,
			Fields: []Field{
				{Name: "language_id", Prompt: "language_id", Type: FieldInt, Required: true},
				{Name: "source_code", Prompt: "source_code", Type: FieldString, Required: true},
				{Name: "source_file", Prompt: "source_file", Type: FieldFile, Required: false},
				{Name: "stdin", Prompt: "stdin", Type: FieldString, Required: false},
				{Name: "expected_output", Prompt: "expected_output", Type: FieldString, Required: false},
				{Name: "wait", Prompt: "wait (true/false)", Type: FieldString, Required: false},
			},
		},
		{
			Service:      "judge",
			Action:       "result",
			Method:       "GET",
			PathTemplate: "/api/v1/admin/judge/submissions/:token",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "token", Prompt: "judge token", Type: FieldString, Required: true},
			},
		},
		{
			Service:      "judge",
			Action:       "poll",
			Method:       "GET",
			PathTemplate: "/api/v1/admin/judge/submissions/:token/poll",
			RequiresAuth: true,
			Fields: []Field{
				{Name: "token", Prompt: "judge token", Type: FieldString, Required: true},
			},
		},
	}

	registry := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		registry[fmt.Sprintf("%s %s", cmd.Service, cmd.Action)] = cmd
	}
	return registry
}

// BuildRequest turns a command and its params into an HTTP request spec.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)
	path, err := buildPath(cmd.PathTemplate, params)
	if err != nil {
		return RequestSpec{}, err
	}
	path = appendQuery(path, cmd.QueryFields, params)

	var body []byte
	if cmd.Method != "GET" && cmd.Method != "DELETE" {
		payload, err := buildPayload(cmd, params)
		if err != nil {
			return RequestSpec{}, err
		}
		if payload != nil {
			body, err = json.Marshal(payload)
			if err != nil {
				return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
			}
		}
	}

	return RequestSpec{
		Method:  cmd.Method,
		Path:    path,
		Headers: map[string]string{},
		Body:    body,
	}, nil
}

func buildPath(template string, params Params) (string, error) {
	path := template
	for _, name := range []string{"id", "token"} {
		placeholder := ":" + name
		if !strings.Contains(path, placeholder) {
			continue
		}
		value := params.Get(name)
		if value == "" {
			return "", fmt.Errorf("missing path parameter: %s", name)
		}
		path = strings.ReplaceAll(path, placeholder, value)
	}
	return path, nil
}

func appendQuery(path string, fields []string, params Params) string {
	values := url.Values{}
	for _, field := range fields {
		if v := params.Get(field); v != "" {
			values.Set(field, v)
		}
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

func buildPayload(cmd Command, params Params) (interface{}, error) {
	switch cmd.Service {
	case "team":
		switch cmd.Action {
		case "register":
			return map[string]string{
				"name":     params.Get("name"),
				"email":    params.Get("email"),
				"password": params.Get("password"),
			}, nil
		case "login":
			return map[string]string{
				"name":     params.Get("name"),
				"password": params.Get("password"),
			}, nil
		}
	case "challenge":
		switch cmd.Action {
		case "create", "update":
			content, err := ReadFile(params.Get("body_file"))
			if err != nil {
				return nil, err
			}
			raw, err := ParseJSON(content)
			if err != nil {
				return nil, fmt.Errorf("invalid challenge json: %w", err)
			}
			return raw, nil
		case "flag":
			return map[string]string{"flag": params.Get("flag")}, nil
		}
	case "submission":
		if cmd.Action == "create" {
			challengeID, err := ParseInt64(params.Get("challenge_id"))
			if err != nil {
				return nil, fmt.Errorf("invalid challenge_id: %w", err)
			}
			languageID, err := ParseInt(params.Get("language_id"))
			if err != nil {
				return nil, fmt.Errorf("invalid language_id: %w", err)
			}
			source := params.Get("source_code")
			if file := params.Get("source_file"); file != "" {
				source, err = ReadFile(file)
				if err != nil {
					return nil, err
				}
			}
			return map[string]interface{}{
				"challenge_id": challengeID,
				"language_id":  languageID,
				"source_code":  source,
			}, nil
		}
	case "judge":
		if cmd.Action == "submit" {
			languageID, err := ParseInt(params.Get("language_id"))
			if err != nil {
				return nil, fmt.Errorf("invalid language_id: %w", err)
			}
			source := params.Get("source_code")
			if file := params.Get("source_file"); file != "" {
				source, err = ReadFile(file)
				if err != nil {
					return nil, err
				}
			}
			payload := map[string]interface{}{
				"language_id": languageID,
				"source_code": source,
			}
			if stdin := params.Get("stdin"); stdin != "" {
				payload["stdin"] = stdin
			}
			if expected := params.Get("expected_output"); expected != "" {
				payload["expected_output"] = expected
			}
			return payload, nil
		}
	}
	return nil, nil
}
