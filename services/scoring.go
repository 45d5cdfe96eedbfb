package services

import "github.com/podiumpicks/podium-api/models"

// Points awarded per podium position.
const (
	PointsExactPosition = 2 // predicted rider finished exactly there
	PointsOnPodium      = 1 // predicted rider finished on the podium, wrong slot
	PointsMiss          = 0
)

// PodiumScore is the outcome of scoring one prediction against one result.
type PodiumScore struct {
	Position1 int
	Position2 int
	Position3 int
	Total     int
}

// CalculateScore compares a predicted podium with the confirmed one, position
// by position: 2 points for the exact slot, 1 if the rider finished on the
// podium at all, 0 otherwise. Pure and total over well-formed triples.
func CalculateScore(prediction, result models.Podium) PodiumScore {
	predicted := prediction.Riders()
	confirmed := result.Riders()

	var points [3]int
	for i := 0; i < 3; i++ {
		switch {
		case predicted[i] == confirmed[i]:
			points[i] = PointsExactPosition
		case predicted[i] == confirmed[0] || predicted[i] == confirmed[1] || predicted[i] == confirmed[2]:
			points[i] = PointsOnPodium
		default:
			points[i] = PointsMiss
		}
	}

	return PodiumScore{
		Position1: points[0],
		Position2: points[1],
		Position3: points[2],
		Total:     points[0] + points[1] + points[2],
	}
}

// scoreFor builds the persistable score row for one prediction.
func scoreFor(prediction *models.Prediction, result models.Podium) *models.Score {
	s := CalculateScore(prediction.Podium, result)
	return &models.Score{
		UserID:          prediction.UserID,
		RaceID:          prediction.RaceID,
		Position1Points: s.Position1,
		Position2Points: s.Position2,
		Position3Points: s.Position3,
		Points:          s.Total,
	}
}

// buildScores computes one score row per prediction for a race's confirmed
// podium. Deterministic: same inputs, same rows.
func buildScores(predictions []*models.Prediction, result models.Podium) []*models.Score {
	scores := make([]*models.Score, 0, len(predictions))
	for _, p := range predictions {
		scores = append(scores, scoreFor(p, result))
	}
	return scores
}
