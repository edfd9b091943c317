package models

type TrelloCardData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortLink string `json:"shortLink"`
	Closed    bool   `json:"closed"`
}

type TrelloListData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TrelloBoardData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TrelloWebhookPayload struct {
	Action struct {
		Data struct {
			Card       TrelloCardData  `json:"card"`
			Board      TrelloBoardData `json:"board"`
			ListBefore TrelloListData  `json:"listBefore"`
			ListAfter  TrelloListData  `json:"listAfter"`
		} `json:"data"`
		Type string `json:"type"` // e.g., "updateCard"
	} `json:"action"`
}
