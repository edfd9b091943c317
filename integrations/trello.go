package integrations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/aklyne/leadsync/internal/board"
)

const trelloBaseURL = "https://api.trello.com/1"

// TrelloBoard implements board.Board over the Trello REST API.
type TrelloBoard struct {
	Client      *http.Client
	APIKey      string
	APIToken    string
	BoardID     string
	CallbackURL string
}

func NewTrelloBoard(key, token, boardID, callbackURL string) *TrelloBoard {
	return &TrelloBoard{
		Client:      &http.Client{},
		APIKey:      key,
		APIToken:    token,
		BoardID:     boardID,
		CallbackURL: callbackURL,
	}
}

type trelloList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type trelloCard struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	IDList string `json:"idList"`
}

func (tb *TrelloBoard) ListLanes() ([]board.Lane, error) {
	var lists []trelloList
	if err := tb.request(http.MethodGet, fmt.Sprintf("/boards/%s/lists", tb.BoardID), nil, &lists); err != nil {
		return nil, err
	}

	lanes := make([]board.Lane, 0, len(lists))
	for _, l := range lists {
		lanes = append(lanes, board.Lane{ID: l.ID, Name: l.Name})
	}
	return lanes, nil
}

func (tb *TrelloBoard) ListItemsInLane(laneID string) ([]board.Item, error) {
	var cards []trelloCard
	if err := tb.request(http.MethodGet, fmt.Sprintf("/lists/%s/cards", laneID), nil, &cards); err != nil {
		return nil, err
	}

	items := make([]board.Item, 0, len(cards))
	for _, c := range cards {
		items = append(items, board.Item{ID: c.ID, Name: c.Name, Description: c.Desc, LaneID: c.IDList})
	}
	return items, nil
}

func (tb *TrelloBoard) GetItemByID(id string) (board.Item, bool, error) {
	var card trelloCard
	err := tb.request(http.MethodGet, fmt.Sprintf("/cards/%s", id), nil, &card)
	if err == errTrelloNotFound {
		return board.Item{}, false, nil
	}
	if err != nil {
		return board.Item{}, false, err
	}
	return board.Item{ID: card.ID, Name: card.Name, Description: card.Desc, LaneID: card.IDList}, true, nil
}

func (tb *TrelloBoard) CreateItem(laneID, name, description string) (string, error) {
	params := url.Values{}
	params.Set("idList", laneID)
	params.Set("name", name)
	params.Set("desc", description)

	var card trelloCard
	if err := tb.request(http.MethodPost, "/cards", params, &card); err != nil {
		return "", err
	}
	return card.ID, nil
}

func (tb *TrelloBoard) MoveItem(id, targetLaneID string) error {
	params := url.Values{}
	params.Set("idList", targetLaneID)
	return tb.request(http.MethodPut, fmt.Sprintf("/cards/%s", id), params, nil)
}

func (tb *TrelloBoard) CloseItem(id string) error {
	params := url.Values{}
	params.Set("closed", "true")
	return tb.request(http.MethodPut, fmt.Sprintf("/cards/%s", id), params, nil)
}

var errTrelloNotFound = fmt.Errorf("trello resource not found")

func (tb *TrelloBoard) request(method, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", tb.APIKey)
	params.Set("token", tb.APIToken)

	apiURL := trelloBaseURL + path + "?" + params.Encode()
	req, err := http.NewRequest(method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %v", method, err)
	}

	resp, err := tb.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %v", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errTrelloNotFound
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode Trello response: %v", err)
		}
	}
	return nil
}

func (tb *TrelloBoard) RegisterWebhook() (string, error) {
	apiURL := trelloBaseURL + "/webhooks/"

	formData := url.Values{}
	formData.Set("key", tb.APIKey)
	formData.Set("token", tb.APIToken)
	formData.Set("callbackURL", tb.CallbackURL)
	formData.Set("idModel", tb.BoardID)
	formData.Set("description", "Webhook for lead sync")

	req, err := http.NewRequest("POST", apiURL, bytes.NewBufferString(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create post request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tb.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send post request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var webhook struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&webhook); err != nil {
		return "", fmt.Errorf("failed to decode Trello response: %v", err)
	}

	log.Printf("Successfully registered webhook with ID: %s for board ID: %s\n", webhook.ID, tb.BoardID)

	return webhook.ID, nil
}

func (tb *TrelloBoard) DeleteWebhook(webhookID string) error {
	apiURL := fmt.Sprintf("%s/webhooks/%s", trelloBaseURL, webhookID)

	formData := url.Values{}
	formData.Set("key", tb.APIKey)
	formData.Set("token", tb.APIToken)

	req, err := http.NewRequest("DELETE", apiURL, bytes.NewBufferString(formData.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create delete request: %v", err)
	}

	resp, err := tb.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send delete request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	log.Printf("Successfully deleted webhook with ID: %s\n", webhookID)

	return nil
}
