package redis

import "github.com/tunequiz/tunequiz/internal/model"

const keyPrefix = "tunequiz:"

// gameRecordsIndexKey is a list of game IDs in completion order
const gameRecordsIndexKey = keyPrefix + "games:index"

func gameRecordKey(id model.GameID) string {
	return keyPrefix + "game:" + string(id)
}
