package request

// PlayerSeed is one roster entry in a session creation request
type PlayerSeed struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	NbRounds   int          `json:"nb_rounds"`
	Difficulty string       `json:"difficulty"`
	Players    []PlayerSeed `json:"players"`
}
