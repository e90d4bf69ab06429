package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// The simulator soaks the quota race: many providers submit quotes against one
// shared open request as fast as the API accepts them, then some of those
// quotes are sent, refused or deleted. Watching the worker metrics afterwards
// should show exactly one quota closure per request.
func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://api:8080"
	}

	providers := 12
	if v := os.Getenv("PROVIDERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			providers = n
		}
	}

	clientID := uuid.New().String()
	requestID, err := createRequest(apiURL, clientID)
	if err != nil {
		log.Fatalf("failed to create request: %v", err)
	}
	log.Printf("created request %s for client %s", requestID, clientID)

	var wg sync.WaitGroup
	quoteIDs := make([]string, providers)
	for i := 0; i < providers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := submitQuote(apiURL, requestID, clientID)
			if err != nil {
				log.Printf("provider %d failed to submit quote: %v", i, err)
				return
			}
			quoteIDs[i] = id
			log.Printf("provider %d submitted quote %s", i, id)
		}(i)
	}
	wg.Wait()

	// Drive a few lifecycle transitions so the update handler sees traffic.
	for _, id := range quoteIDs {
		if id == "" {
			continue
		}
		switch rand.Intn(4) {
		case 0:
			updateStatus(apiURL, id, "sent", "")
		case 1:
			updateStatus(apiURL, id, "sent", "")
			updateStatus(apiURL, id, "refused", "revision_requested")
		case 2:
			deleteQuote(apiURL, id)
		}
	}

	log.Printf("done. reconcile with: POST %s/api/requests/%s/reconcile", apiURL, requestID)
}

func createRequest(apiURL, clientID string) (string, error) {
	body, _ := json.Marshal(map[string]string{"clientId": clientID, "kind": "open"})
	resp, err := http.Post(apiURL+"/api/requests", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func submitQuote(apiURL, requestID, clientID string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"requestId":  requestID,
		"providerId": uuid.New().String(),
		"clientId":   clientID,
		"status":     "draft",
		"priceCents": int64(1000 + rand.Intn(90000)),
		"message":    "happy to take this on",
	})
	resp, err := http.Post(apiURL+"/api/quotes", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func updateStatus(apiURL, quoteID, status, refusalKind string) {
	payload := map[string]string{"status": status}
	if refusalKind != "" {
		payload["refusalKind"] = refusalKind
	}
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPut, apiURL+"/api/quotes/"+quoteID+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("failed to update quote %s: %v", quoteID, err)
		return
	}
	resp.Body.Close()
	log.Printf("updated quote %s to %s, status: %d", quoteID, status, resp.StatusCode)
}

func deleteQuote(apiURL, quoteID string) {
	req, _ := http.NewRequest(http.MethodDelete, apiURL+"/api/quotes/"+quoteID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("failed to delete quote %s: %v", quoteID, err)
		return
	}
	resp.Body.Close()
	log.Printf("deleted quote %s, status: %d", quoteID, resp.StatusCode)
}
