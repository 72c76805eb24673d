package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Smoke run against a live server:
//
//	go run scripts/smoke_chat_api.go
//
// Tokens are minted locally with JWT_SECRET, so the server must share it.

func baseURL() string {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:3000/web/ai"
}

func mintToken(userId, role string) string {
	claims := jwt.MapClaims{
		"user_id":    userId,
		"role":       role,
		"company_id": 1,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		color.Red("Failed to sign token: %v", err)
		os.Exit(1)
	}
	return s
}

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, path, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL()+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

type step struct {
	title  string
	method string
	path   func() string
	token  string
	body   interface{}
	expect int
	after  func(body []byte)
}

func main() {
	_ = godotenv.Load()
	color.Cyan("🚀 JARVIS chat API smoke run against %s\n", baseURL())

	userToken := mintToken(uuid.NewString(), "user")
	adminToken := mintToken(uuid.NewString(), "admin")
	var sessionId string
	session := func(suffix string) func() string {
		return func() string { return "/chat/" + sessionId + suffix }
	}
	fixed := func(p string) func() string { return func() string { return p } }

	steps := []step{
		{title: "Create session", method: "POST", path: fixed("/chat/session"), token: userToken, body: map[string]string{}, expect: 200,
			after: func(body []byte) {
				var res struct {
					Data struct {
						Id string `json:"id"`
					} `json:"data"`
				}
				_ = json.Unmarshal(body, &res)
				sessionId = res.Data.Id
			}},
		{title: "General question", method: "POST", path: session("/message"), token: userToken, body: map[string]string{"message": "Halo, siapa kamu?"}, expect: 200},
		{title: "Business question", method: "POST", path: session("/message"), token: userToken, body: map[string]string{"message": "Berapa total penjualan bulan ini?"}, expect: 200},
		{title: "Empty message", method: "POST", path: session("/message"), token: userToken, body: map[string]string{"message": "  "}, expect: 400},
		{title: "Message history", method: "GET", path: session("/messages"), token: userToken, expect: 200},
		{title: "Session list", method: "GET", path: fixed("/chat/list"), token: userToken, expect: 200},
		{title: "Export markdown", method: "GET", path: func() string { return "/export/" + sessionId + "?format=md" }, token: userToken, expect: 200},
		{title: "Settings", method: "GET", path: fixed("/settings"), token: userToken, expect: 200},
		{title: "Other user cannot archive", method: "POST", path: session("/archive"), token: mintToken(uuid.NewString(), "user"), expect: 404},
		{title: "Archive", method: "POST", path: session("/archive"), token: userToken, expect: 200},
		{title: "Restore", method: "POST", path: session("/restore"), token: userToken, expect: 200},
		{title: "Clear", method: "POST", path: session("/clear"), token: userToken, expect: 200},
		{title: "Config reload as user", method: "POST", path: fixed("/config/reload"), token: userToken, expect: 403},
		{title: "Config reload as admin", method: "POST", path: fixed("/config/reload"), token: adminToken, expect: 200},
	}

	failed := 0
	for i, s := range steps {
		color.Yellow("\n%d. %s  [%s %s]", i+1, s.title, s.method, s.path())
		resp, body, err := sendRequest(s.method, s.path(), s.token, s.body)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		if resp.StatusCode != s.expect {
			failed++
			color.Red("Status: %s (expected %d)", resp.Status, s.expect)
		} else {
			color.Green("Status: %s", resp.Status)
		}
		prettyPrint(body)
		if s.after != nil {
			s.after(body)
		}
	}

	if failed > 0 {
		color.Red("\n❌ %d of %d steps failed", failed, len(steps))
		os.Exit(1)
	}
	color.Green("\n✅ All %d steps passed", len(steps))
}
