package catalog

import (
	"fmt"
	"strings"

	"dish-lens/internal/pkg/common"
)

// Template 以關鍵字對應的備用食譜
type Template struct {
	Key      string
	Keywords []string
	Recipe   common.Recipe
}

// Templates 依比對順序排列，第一個命中者勝出
var Templates = []Template{
	{
		Key:      "pasta",
		Keywords: []string{"pasta", "spaghetti", "penne", "fettuccine", "linguine", "macaroni", "carbonara", "bolognese"},
		Recipe: common.Recipe{
			Name:        "Simple Pasta",
			Description: "A quick and easy pasta dish perfect for weeknight dinners.",
			Ingredients: []string{
				"8 oz pasta",
				"2 tablespoons olive oil",
				"2 cloves garlic, minced",
				"1 can (14.5 oz) diced tomatoes",
				"Salt and pepper to taste",
				"Fresh basil leaves",
				"Grated Parmesan cheese",
			},
			Instructions: []string{
				"Cook pasta according to package directions until al dente.",
				"While pasta cooks, heat olive oil in a large skillet over medium heat.",
				"Add garlic and cook until fragrant, about 30 seconds.",
				"Add diced tomatoes and simmer for 5-7 minutes.",
				"Season with salt and pepper to taste.",
				"Drain pasta and add to the sauce, tossing to coat.",
				"Garnish with fresh basil and Parmesan cheese before serving.",
			},
			CookingTime: "15 minutes",
			Servings:    2,
			Difficulty:  common.DifficultyEasy,
			Cuisine:     "Italian",
		},
	},
	{
		Key:      "pizza",
		Keywords: []string{"pizza", "margherita", "calzone"},
		Recipe: common.Recipe{
			Name:        "Homemade Pizza",
			Description: "A delicious homemade pizza with your favorite toppings.",
			Ingredients: []string{
				"1 pizza dough (store-bought or homemade)",
				"1/2 cup pizza sauce",
				"2 cups shredded mozzarella cheese",
				"Your favorite toppings (pepperoni, mushrooms, bell peppers, etc.)",
				"1 tablespoon olive oil",
				"1 teaspoon Italian seasoning",
			},
			Instructions: []string{
				"Preheat your oven to 475°F (245°C).",
				"Roll out the pizza dough on a floured surface to your desired thickness.",
				"Transfer the dough to a pizza pan or baking sheet.",
				"Spread pizza sauce evenly over the dough, leaving a small border for the crust.",
				"Sprinkle cheese over the sauce.",
				"Add your favorite toppings.",
				"Brush the crust with olive oil and sprinkle with Italian seasoning.",
				"Bake for 12-15 minutes until the crust is golden and the cheese is bubbly.",
				"Let cool for a few minutes before slicing and serving.",
			},
			CookingTime: "25 minutes",
			Servings:    4,
			Difficulty:  common.DifficultyMedium,
			Cuisine:     "Italian",
		},
	},
	{
		Key:      "burger",
		Keywords: []string{"burger", "hamburger", "cheeseburger"},
		Recipe: common.Recipe{
			Name:        "Classic Burger",
			Description: "A juicy homemade burger with all the fixings.",
			Ingredients: []string{
				"1 lb ground beef (80/20 lean-to-fat ratio)",
				"Salt and pepper to taste",
				"4 hamburger buns",
				"4 slices cheese (American, cheddar, or your preference)",
				"Lettuce leaves",
				"Tomato slices",
				"Onion slices",
				"Pickles",
				"Ketchup, mustard, and mayonnaise",
			},
			Instructions: []string{
				"Divide the ground beef into 4 equal portions and form into patties about 1/2 inch thick.",
				"Press a slight indent in the center of each patty with your thumb to prevent it from bulging when cooking.",
				"Season both sides generously with salt and pepper.",
				"Heat a skillet or grill to medium-high heat.",
				"Cook the patties for 3-4 minutes on each side for medium doneness.",
				"Add cheese slices on top of the patties during the last minute of cooking.",
				"Toast the hamburger buns lightly if desired.",
				"Assemble the burgers with your favorite condiments and toppings.",
			},
			CookingTime: "15 minutes",
			Servings:    4,
			Difficulty:  common.DifficultyEasy,
			Cuisine:     "American",
		},
	},
	{
		Key:      "salad",
		Keywords: []string{"salad"},
		Recipe: common.Recipe{
			Name:        "Fresh Garden Salad",
			Description: "A refreshing salad with crisp vegetables and a tangy dressing.",
			Ingredients: []string{
				"4 cups mixed salad greens",
				"1 cucumber, sliced",
				"1 tomato, diced",
				"1/2 red onion, thinly sliced",
				"1/4 cup olive oil",
				"2 tablespoons balsamic vinegar",
				"Salt and pepper to taste",
			},
			Instructions: []string{
				"Wash and dry all vegetables thoroughly.",
				"In a large bowl, combine the salad greens, cucumber, tomato, and red onion.",
				"In a small bowl, whisk together olive oil, balsamic vinegar, salt, and pepper.",
				"Pour the dressing over the salad just before serving.",
				"Toss gently to coat all ingredients with the dressing.",
			},
			CookingTime: "10 minutes",
			Servings:    4,
			Difficulty:  common.DifficultyEasy,
			Cuisine:     "International",
		},
	},
	{
		Key:      "chicken",
		Keywords: []string{"chicken"},
		Recipe: common.Recipe{
			Name:        "Simple Grilled Chicken",
			Description: "Juicy grilled chicken with herbs and spices.",
			Ingredients: []string{
				"4 chicken breasts",
				"2 tablespoons olive oil",
				"2 cloves garlic, minced",
				"1 teaspoon dried oregano",
				"1 teaspoon dried basil",
				"1/2 teaspoon paprika",
				"Salt and pepper to taste",
				"Lemon wedges for serving",
			},
			Instructions: []string{
				"In a bowl, mix olive oil, garlic, oregano, basil, paprika, salt, and pepper.",
				"Place chicken breasts in a shallow dish and pour the marinade over them.",
				"Cover and refrigerate for at least 30 minutes (or up to 4 hours).",
				"Preheat grill or grill pan to medium-high heat.",
				"Grill chicken for 6-7 minutes per side, or until internal temperature reaches 165°F (74°C).",
				"Let chicken rest for 5 minutes before serving.",
				"Serve with lemon wedges on the side.",
			},
			CookingTime: "25 minutes",
			Servings:    4,
			Difficulty:  common.DifficultyEasy,
			Cuisine:     "International",
		},
	},
	{
		Key:      "sushi",
		Keywords: []string{"sushi", "maki"},
		Recipe: common.Recipe{
			Name:        "Simple Sushi Roll",
			Description: "Easy homemade sushi rolls with fresh ingredients.",
			Ingredients: []string{
				"2 cups sushi rice",
				"3 cups water",
				"1/4 cup rice vinegar",
				"2 tablespoons sugar",
				"1 teaspoon salt",
				"4 sheets nori (seaweed)",
				"1 cucumber, julienned",
				"1 avocado, sliced",
				"1 carrot, julienned",
				"Soy sauce for serving",
				"Wasabi and pickled ginger (optional)",
			},
			Instructions: []string{
				"Rinse the rice until water runs clear, then cook according to package instructions.",
				"In a small bowl, mix rice vinegar, sugar, and salt until dissolved.",
				"When rice is cooked, transfer to a large bowl and gently fold in the vinegar mixture.",
				"Let rice cool to room temperature.",
				"Place a sheet of nori on a bamboo sushi mat.",
				"Spread a thin layer of rice over the nori, leaving a 1-inch border at the top.",
				"Arrange cucumber, avocado, and carrot in a line across the center of the rice.",
				"Roll the sushi tightly using the bamboo mat, applying gentle pressure.",
				"Seal the edge with a little water.",
				"Use a sharp knife to cut the roll into 6-8 pieces.",
				"Serve with soy sauce, wasabi, and pickled ginger if desired.",
			},
			CookingTime: "45 minutes",
			Servings:    4,
			Difficulty:  common.DifficultyMedium,
			Cuisine:     "Japanese",
		},
	},
}

// FindTemplate 以子字串比對菜名，回傳模板食譜的副本
func FindTemplate(dishName string) (*Template, bool) {
	lower := strings.ToLower(dishName)
	for i := range Templates {
		for _, kw := range Templates[i].Keywords {
			if strings.Contains(lower, kw) {
				t := Templates[i]
				t.Recipe = *Templates[i].Recipe.Clone()
				return &t, true
			}
		}
	}
	return nil, false
}

// GenericRecipe 沒有任何模板命中時，以菜名生成通用食譜骨架
// 只填入食材與步驟，時間、份量與難度由估算器補上
func GenericRecipe(dishName string) common.Recipe {
	name := strings.TrimSpace(dishName)
	if name == "" {
		name = common.SentinelDish
	}
	return common.Recipe{
		Name:        common.Capitalize(name),
		Description: fmt.Sprintf("A delicious %s recipe.", name),
		Ingredients: []string{
			fmt.Sprintf("1 %s", name),
			"2 tablespoons olive oil",
			"1 onion, chopped",
			"2 cloves garlic, minced",
			"Salt and pepper to taste",
			"Fresh herbs (parsley, basil, or cilantro)",
		},
		Instructions: []string{
			fmt.Sprintf("Prepare the %s by washing and cutting it as needed.", name),
			"Heat olive oil in a pan over medium heat.",
			"Add onion and garlic, cook until softened.",
			fmt.Sprintf("Add the %s and cook until done.", name),
			"Season with salt, pepper, and fresh herbs.",
			"Serve hot and enjoy!",
		},
	}
}
