package recipe

import (
	"fmt"
	"testing"

	"dish-lens/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", s, i)
	}
	return out
}

func TestEstimateEmptyInput(t *testing.T) {
	e := EstimateRecipe(nil, nil)

	assert.Equal(t, "15 minutes", e.CookingTime)
	assert.Equal(t, 2, e.Servings)
	assert.Equal(t, common.DifficultyEasy, e.Difficulty)
}

func TestCookingMinutes(t *testing.T) {
	steps := []string{"Chop the onion", "Simmer for 20 minutes", "Bake until golden"}
	ingredients := repeat("item", 4)

	// 15 + 3*3 + 4 + 30 + 30
	assert.Equal(t, 88, CookingMinutes(steps, ingredients))
	assert.Equal(t, "1 hour 28 minutes", EstimateRecipe(steps, ingredients).CookingTime)
}

func TestCookingMinutesCountsEveryKeywordInStep(t *testing.T) {
	steps := []string{"Marinate, then chill and roast"}

	// 15 + 3 + 60 + 60 + 30
	assert.Equal(t, 168, CookingMinutes(steps, nil))
}

func TestCookingMinutesSlowCook(t *testing.T) {
	assert.Equal(t, 15+3+120, CookingMinutes([]string{"SLOW COOK on low"}, nil))
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{
		15:  "15 minutes",
		59:  "59 minutes",
		60:  "1 hour",
		61:  "1 hour 1 minutes",
		120: "2 hours",
		135: "2 hours 15 minutes",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMinutes(in), "minutes=%d", in)
	}
}

func TestEstimateServings(t *testing.T) {
	assert.Equal(t, 8, EstimateServings([]string{"2 cups flour", "Serves 8 people"}))
	assert.Equal(t, 3, EstimateServings([]string{"servings as desired", "1 egg", "serving size 3"}))

	assert.Equal(t, 2, EstimateServings(repeat("x", 5)))
	assert.Equal(t, 4, EstimateServings(repeat("x", 6)))
	assert.Equal(t, 4, EstimateServings(repeat("x", 10)))
	assert.Equal(t, 6, EstimateServings(repeat("x", 11)))
}

func TestEstimateDifficulty(t *testing.T) {
	assert.Equal(t, common.DifficultyEasy, EstimateDifficulty(repeat("step", 5), repeat("x", 10)))
	assert.Equal(t, common.DifficultyMedium, EstimateDifficulty(repeat("step", 6), repeat("x", 6)))
	assert.Equal(t, common.DifficultyMedium, EstimateDifficulty(repeat("step", 11), repeat("x", 11)), "score 6 is still medium")

	complexSteps := append(repeat("step", 9), "Knead the dough and fold it", "Deglaze the pan")
	// 3 + 3 + 2
	assert.Equal(t, common.DifficultyHard, EstimateDifficulty(complexSteps, repeat("x", 11)))
}

func TestEstimateIsDeterministic(t *testing.T) {
	steps := []string{"Braise the beef", "Reduce the sauce"}
	ingredients := []string{"1 kg beef", "Serves 4"}

	assert.Equal(t, EstimateRecipe(steps, ingredients), EstimateRecipe(steps, ingredients))
}

func TestEstimateDocumentedBoundaries(t *testing.T) {
	assert.Equal(t, 6, EstimateServings([]string{"1 cup rice", "Serves 6 people"}))
	assert.Equal(t, 2, EstimateServings([]string{"rice", "beans", "salt"}))

	assert.Equal(t, common.DifficultyEasy, EstimateDifficulty(repeat("step", 5), repeat("x", 5)))

	steps := repeat("step", 11)
	assert.Equal(t, common.DifficultyMedium, EstimateDifficulty(steps, repeat("x", 11)))
	assert.Equal(t, common.DifficultyHard, EstimateDifficulty(append(steps, "Braise the shanks"), repeat("x", 11)))
}

func TestBakeAddsAtLeastThirtyMinutes(t *testing.T) {
	base := []string{"Mix the batter", "Pour into a tin"}
	withBake := append(append([]string{}, base...), "Bake for 40 minutes")

	assert.GreaterOrEqual(t, CookingMinutes(withBake, nil)-CookingMinutes(base, nil), 30)
	assert.Equal(t, CookingMinutes([]string{"Mix and bake"}, nil)-CookingMinutes([]string{"Mix it"}, nil), 30)
}
