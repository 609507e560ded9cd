package estimator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/saadjs/daykcal/internal/model"
)

const systemPrompt = `You are a nutrition assistant. Identify the meal and estimate its nutrition. Return a JSON object with:
- "meal_name" (string, short title case name of the whole meal)
- "items" (array of {"name": string, "calories": integer}) for each distinct food
- "total_calories" (integer, kcal for everything shown or described)
- "macros" ({"protein_g": number, "carbs_g": number, "fat_g": number}, totals in grams)
- "confidence" (number from 0 to 1)

Always give your best estimate for anything edible. If the input is not food at all, return {"meal_name": "Unknown", "items": [], "total_calories": 0, "macros": {"protein_g": 0, "carbs_g": 0, "fat_g": 0}, "confidence": 0}.
Return only valid JSON, no explanation.`

const imageInstruction = "Estimate the nutrition of the meal in this photo."

func textInstruction(description string) string {
	return "Estimate the nutrition of this meal: " + strings.TrimSpace(description)
}

type reply struct {
	Error         string           `json:"error"`
	MealName      string           `json:"meal_name"`
	Items         []model.FoodItem `json:"items"`
	TotalCalories *float64         `json:"total_calories"`
	Macros        model.Macros     `json:"macros"`
	Confidence    float64          `json:"confidence"`
}

// parseReply decodes the model's JSON text into an Outcome.
func parseReply(text string) (Outcome, error) {
	text = stripFence(text)
	if text == "" {
		return Outcome{}, errors.New("empty reply")
	}
	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Outcome{}, fmt.Errorf("decode reply: %w", err)
	}
	if r.Error == "unrecognized" {
		return Outcome{Kind: KindNotFood}, nil
	}
	if r.Error != "" {
		return Outcome{}, fmt.Errorf("model reported %q", r.Error)
	}
	if r.TotalCalories == nil {
		return Outcome{}, errors.New("reply has no total_calories")
	}

	itemSum := 0
	for i, it := range r.Items {
		if it.Calories < 0 {
			return Outcome{}, fmt.Errorf("item %d has negative calories", i)
		}
		r.Items[i].Name = strings.TrimSpace(it.Name)
		itemSum += it.Calories
	}
	total := int(math.Round(*r.TotalCalories))
	if total < 0 || r.Macros.ProteinG < 0 || r.Macros.CarbsG < 0 || r.Macros.FatG < 0 {
		return Outcome{}, errors.New("reply has negative nutrition values")
	}
	if total == 0 {
		total = itemSum
	}

	name := strings.TrimSpace(r.MealName)
	if total == 0 && (name == "" || strings.EqualFold(name, "unknown")) {
		return Outcome{Kind: KindNotFood}, nil
	}
	if name == "" {
		name = "Meal"
	}

	return Outcome{
		Kind: KindFood,
		Estimate: model.NutritionEstimate{
			MealName:      name,
			Items:         r.Items,
			TotalCalories: total,
			Macros:        r.Macros,
			Confidence:    clamp01(r.Confidence),
		},
	}, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
