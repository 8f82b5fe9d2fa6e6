package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

const apiBase = "http://localhost:8080/api/v1"

type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserID   string `json:"userId"`

	client *http.Client
}

type AuthResponse struct {
	Success bool `json:"success"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	ActiveOrganizationID string `json:"activeOrganizationId"`
	Error                string `json:"error"`
}

func newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

func registerUser(email, password, name, organizationName string) (*User, string, error) {
	body, _ := json.Marshal(map[string]string{
		"email":            email,
		"password":         password,
		"name":             name,
		"organizationName": organizationName,
	})

	client := newClient()
	resp, err := client.Post(apiBase+"/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("registration failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("decode failed: %w", err)
	}

	return &User{
		Email:    result.User.Email,
		Password: password,
		UserID:   result.User.ID,
		client:   client,
	}, result.ActiveOrganizationID, nil
}

func addMember(owner *User, organizationID, email, role string) error {
	body, _ := json.Marshal(map[string]string{
		"email": email,
		"role":  role,
	})

	resp, err := owner.client.Post(apiBase+"/organizations/"+organizationID+"/members", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("add member failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

func saveDashboard(owner *User, organizationID, slug, name string, widgets interface{}) error {
	body, _ := json.Marshal(map[string]interface{}{
		"name":    name,
		"widgets": widgets,
	})

	req, _ := http.NewRequest("PUT", apiBase+"/organizations/"+organizationID+"/dashboards/"+slug, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := owner.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("save dashboard failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

func generateEmail(index int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("demo_%d_%d_%s@example.com", index, time.Now().Unix(), string(random))
}

func main() {
	password := "demopassword123"

	fmt.Println("Seeding demo workspace...")

	// The owner registers and gets the workspace organization.
	ownerEmail := generateEmail(0)
	owner, organizationID, err := registerUser(ownerEmail, password, "Demo Owner", "Demo Workspace")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register owner: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ Owner: %s\n", owner.Email)

	// Register 4 more users, each landing in their own throwaway org,
	// then invite them into the demo workspace.
	roles := []string{"admin", "member", "member", "member"}
	var users []*User
	for i, role := range roles {
		email := generateEmail(i + 1)
		user, _, err := registerUser(email, password, fmt.Sprintf("Demo User %d", i+1), fmt.Sprintf("Personal %d", i+1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register user %d: %v\n", i+1, err)
			os.Exit(1)
		}
		if err := addMember(owner, organizationID, user.Email, role); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add user %d: %v\n", i+1, err)
			os.Exit(1)
		}
		users = append(users, user)
		fmt.Printf("  ✓ %s: %s\n", role, user.Email)
	}

	// A starter dashboard so the workspace is not empty.
	fmt.Println("\nCreating starter dashboard...")
	widgets := []map[string]interface{}{
		{"type": "chart", "metric": "signups", "w": 6, "h": 4},
		{"type": "chart", "metric": "revenue", "w": 6, "h": 4},
		{"type": "table", "metric": "recent_events", "w": 12, "h": 6},
	}
	if err := saveDashboard(owner, organizationID, "overview", "Overview", widgets); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create dashboard: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  ✓ Dashboard: overview")

	fmt.Println("\n" + "============================================================")
	fmt.Println("DEMO WORKSPACE READY")
	fmt.Println("============================================================")
	fmt.Printf("\nOrganization: %s\n", organizationID)
	fmt.Printf("\nLogin with any user (password: %s):\n", password)
	fmt.Printf("  owner:  %s\n", owner.Email)
	for i, user := range users {
		fmt.Printf("  %-6s  %s\n", roles[i]+":", user.Email)
	}

	// Output JSON for programmatic use
	output := map[string]interface{}{
		"organizationId": organizationID,
		"owner":          owner,
		"users":          users,
	}

	fmt.Println("\nJSON OUTPUT (for scripts):")
	jsonOutput, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonOutput))
}
