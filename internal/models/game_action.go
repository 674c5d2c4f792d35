package models

import "github.com/google/uuid"

// ActionRecord captures one committed engine operation for the action journal.
// The historian persists these in order of ActionIndex per game.
type ActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       string                 `json:"actor_id,omitempty"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"` // epoch millis
}

// Action types written to the journal by the engine.
const (
	ActionPlayerJoin      = "player_join"
	ActionGameStart       = "game_start"
	ActionPlayCard        = "player_play_card"
	ActionTakeCard        = "player_take_card"
	ActionDeckRegenerated = "game_deck_regenerated"
	ActionGameEnd         = "game_end"
)
