// Package postman generates a Postman v2.1 collection covering the API.
package postman

import (
	"strings"

	"github.com/apilab/apilab/internal/seed"
)

// SchemaURL identifies the Postman collection format.
const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Filename is the suggested download name for the collection.
const Filename = "API_Lab_Collection.json"

// Collection is the root of a Postman collection document.
type Collection struct {
	Info     Info       `json:"info"`
	Auth     *Auth      `json:"auth,omitempty"`
	Variable []Variable `json:"variable"`
	Item     []Folder   `json:"item"`
}

// Info describes the collection.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"schema"`
}

// Auth configures request authentication. Type "noauth" disables the
// collection-level bearer token.
type Auth struct {
	Type   string     `json:"type"`
	Bearer []Variable `json:"bearer,omitempty"`
	Basic  []Variable `json:"basic,omitempty"`
}

// Variable is a typed key/value pair.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Folder groups related requests.
type Folder struct {
	Name string `json:"name"`
	Item []Item `json:"item"`
}

// Item is a single saved request.
type Item struct {
	Name    string  `json:"name"`
	Event   []Event `json:"event,omitempty"`
	Request Request `json:"request"`
}

// Event attaches a script to a request lifecycle hook.
type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

// Script is a JavaScript snippet.
type Script struct {
	Exec []string `json:"exec"`
	Type string   `json:"type"`
}

// Request is the saved HTTP request.
type Request struct {
	Auth        *Auth      `json:"auth,omitempty"`
	Method      string     `json:"method"`
	Header      []Variable `json:"header"`
	Body        *Body      `json:"body,omitempty"`
	URL         URL        `json:"url"`
	Description string     `json:"description"`
}

// Body is a raw request body.
type Body struct {
	Mode string `json:"mode"`
	Raw  string `json:"raw"`
}

// URL is a templated request URL.
type URL struct {
	Raw   string     `json:"raw"`
	Host  []string   `json:"host"`
	Path  []string   `json:"path"`
	Query []Variable `json:"query,omitempty"`
}

const baseURLVar = "{{base_url}}"

// Generate builds the collection with baseURL stored in the base_url
// collection variable.
func Generate(baseURL string) *Collection {
	basic := &Auth{
		Type: "basic",
		Basic: []Variable{
			{Key: "username", Value: seed.UserEmail, Type: "string"},
			{Key: "password", Value: seed.UserPassword, Type: "string"},
		},
	}

	return &Collection{
		Info: Info{
			Name:        "API Lab - Learning Collection",
			Description: "Interactive API learning sandbox with authentication examples",
			Schema:      SchemaURL,
		},
		Auth: &Auth{
			Type:   "bearer",
			Bearer: []Variable{{Key: "token", Value: "{{token}}", Type: "string"}},
		},
		Variable: []Variable{
			{Key: "base_url", Value: baseURL, Type: "string"},
			{Key: "token", Value: "", Type: "string"},
		},
		Item: []Folder{
			{
				Name: "Authentication",
				Item: []Item{
					{
						Name: "Login (Get Token)",
						Event: []Event{{
							Listen: "test",
							Script: Script{
								Exec: []string{
									"// Save token to collection variable",
									"if (pm.response.code === 200) {",
									"    var jsonData = pm.response.json();",
									"    pm.collectionVariables.set('token', jsonData.token);",
									"    console.log('Token saved:', jsonData.token);",
									"}",
								},
								Type: "text/javascript",
							},
						}},
						Request: jsonRequest("POST", "/api/auth/login",
							"{\n  \"email\": \""+seed.UserEmail+"\",\n  \"password\": \""+seed.UserPassword+"\"\n}",
							"Login with test credentials to get a JWT token"),
					},
					{
						Name:    "Get Current User",
						Request: request("GET", "/api/auth/me", "Get current authenticated user info (requires token)"),
					},
				},
			},
			{
				Name: "Todos - Basic Auth",
				Item: []Item{
					{Name: "List All Todos", Request: withAuth(basic,
						request("GET", "/api/todos", "Get all todos using Basic Auth"))},
					{Name: "Create Todo", Request: withAuth(basic,
						jsonRequest("POST", "/api/todos",
							"{\n  \"title\": \"My new todo from Postman\",\n  \"description\": \"Created using Basic Auth\",\n  \"completed\": false\n}",
							"Create a new todo using Basic Auth"))},
					{Name: "Update Todo", Request: withAuth(basic,
						jsonRequest("PUT", "/api/todos/1",
							"{\n  \"title\": \"Updated todo title\",\n  \"completed\": true\n}",
							"Update todo #1 using Basic Auth"))},
					{Name: "Delete Todo", Request: withAuth(basic,
						request("DELETE", "/api/todos/1", "Delete todo #1 using Basic Auth"))},
				},
			},
			{
				Name: "Todos - Token Auth",
				Item: []Item{
					{Name: "List All Todos", Request: request("GET", "/api/todos", "Get all todos using JWT token (run Login first)")},
					{Name: "Get Single Todo", Request: request("GET", "/api/todos/1", "Get todo #1 using JWT token")},
					{Name: "Create Todo", Request: jsonRequest("POST", "/api/todos",
						"{\n  \"title\": \"Todo from Postman with Token\",\n  \"description\": \"Created using JWT authentication\",\n  \"completed\": false\n}",
						"Create a new todo using JWT token")},
					{Name: "Update Todo", Request: jsonRequest("PUT", "/api/todos/2",
						"{\n  \"completed\": true\n}",
						"Mark todo #2 as completed")},
					{Name: "Delete Todo", Request: request("DELETE", "/api/todos/3", "Delete todo #3")},
				},
			},
			{
				Name: "Admin (Requires Admin Token)",
				Item: []Item{
					{Name: "Get All Users", Request: request("GET", "/api/admin/users",
						"Get all users (admin only). Login as "+seed.AdminEmail+" / "+seed.AdminPassword)},
					{Name: "Get Request Logs", Request: withQuery(
						request("GET", "/api/admin/logs", "Get recent request logs (admin only)"),
						Variable{Key: "limit", Value: "50"})},
					{Name: "Get Database Table - Todos", Request: request("GET", "/api/admin/db/tables/todos",
						"View all todos in database")},
					{Name: "Reset Database", Request: request("POST", "/api/admin/reset",
						"Reset database to default seed data")},
				},
			},
			{
				Name: "Utility",
				Item: []Item{
					{Name: "Health Check", Request: withAuth(&Auth{Type: "noauth"},
						request("GET", "/api/health", "Check if API is running"))},
					{Name: "List Scenarios", Request: withAuth(&Auth{Type: "noauth"},
						request("GET", "/api/scenarios", "List guided learning scenarios"))},
				},
			},
		},
	}
}

func request(method, path, description string) Request {
	return Request{
		Method:      method,
		Header:      []Variable{},
		URL:         newURL(path),
		Description: description,
	}
}

func jsonRequest(method, path, raw, description string) Request {
	r := request(method, path, description)
	r.Header = []Variable{{Key: "Content-Type", Value: "application/json"}}
	r.Body = &Body{Mode: "raw", Raw: raw}
	return r
}

func withAuth(auth *Auth, r Request) Request {
	r.Auth = auth
	return r
}

func withQuery(r Request, params ...Variable) Request {
	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = p.Key + "=" + p.Value
	}
	r.URL.Query = params
	r.URL.Raw += "?" + strings.Join(pairs, "&")
	return r
}

func newURL(path string) URL {
	return URL{
		Raw:  baseURLVar + path,
		Host: []string{baseURLVar},
		Path: strings.Split(strings.TrimPrefix(path, "/"), "/"),
	}
}
