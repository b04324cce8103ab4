package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meal-planner/internal/app"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

const helpText = "🧑‍🍳 *Meal Planner*\n\n" +
	"/plan - show this week's plan\n" +
	"/newplan - start a plan from your noted recipes\n" +
	"/random lunch|dinner - fill a slot for the whole week\n" +
	"/shopping - shopping list for the plan\n" +
	"/metrics - usage and health\n\n" +
	"Send a recipe link to clip it, then /save to keep it."

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatPlanMarkdown(plan planner.WeekPlan) string {
	var pb strings.Builder
	pb.WriteString("📅 *Weekly Meal Plan*\n\n")

	for _, day := range planner.WeekDays {
		cells := plan[day]
		if cells.Lunch == nil && cells.Dinner == nil {
			continue
		}
		pb.WriteString(fmt.Sprintf("*%s*\n", day))
		for _, slot := range planner.MealSlots {
			if m := cells.Get(slot); m != nil {
				pb.WriteString(fmt.Sprintf("• %s: %s (%d)\n", slotLabel(slot), escape(m.RecipeName), m.Servings))
			}
		}
		pb.WriteString("\n")
	}

	if len(plan.Meals()) == 0 {
		pb.WriteString("_Nothing planned yet._\n")
	}
	return pb.String()
}

func formatShoppingListMarkdown(list shopping.List) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if list.Len() == 0 {
		sb.WriteString("_Nothing to buy._\n")
		return sb.String()
	}

	for _, category := range list.Categories() {
		sb.WriteString(fmt.Sprintf("*%s*\n", category))
		for _, item := range list[category] {
			days := make([]string, len(item.UsedOnDays))
			for i, d := range item.UsedOnDays {
				days[i] = string(d)[:3]
			}
			sb.WriteString(fmt.Sprintf("• %s %s (%s)\n", escape(item.Amount+item.Unit), escape(item.Name), strings.Join(days, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatClipMarkdown(draft recipe.Recipe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ *%s*\n", escape(draft.Name)))
	sb.WriteString(fmt.Sprintf("Servings: %d\n\n", draft.Servings))
	for _, line := range draft.AnalyzedIngredients {
		sb.WriteString(fmt.Sprintf("• %s %s", escape(line.Amount), escape(line.Name)))
		if line.IsNew() {
			sb.WriteString(" _(new)_")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatSavedMarkdown(res app.SaveResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💾 *Saved:* %s\n", escape(res.Recipe.Name)))
	for _, u := range res.ProposedUpdates {
		sb.WriteString(fmt.Sprintf("• Catalog entry %s differs (%s), used by %d other recipes\n",
			escape(u.Before.Name), strings.Join(u.Fields, ", "), u.ReferencedBy))
	}
	return sb.String()
}

func slotLabel(slot planner.MealSlot) string {
	if slot == planner.Lunch {
		return "Lunch"
	}
	return "Dinner"
}
