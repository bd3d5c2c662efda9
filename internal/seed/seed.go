package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"tastebase/internal/database"
	"tastebase/internal/models"
	"tastebase/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers   int
	NumRecipes int
	NumReviews int
}

// Seeder orchestrates demo-data generation on top of the Factory helpers.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rand    *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes every row from every table, children before parents.
func (s *Seeder) ClearAll() error {
	names := database.TableNames()
	for i := len(names) - 1; i >= 0; i-- {
		if !s.db.Migrator().HasTable(names[i]) {
			continue
		}
		if err := s.db.Exec("DELETE FROM " + names[i]).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", names[i], err)
		}
	}
	return nil
}

// Seed populates the database with a connected community: users following
// each other, recipes with nutrition and ingredients, reviews, and likes.
// Derived rating columns are recomputed at the end so they match the reviews.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users, %d recipes, %d reviews...",
		opts.NumUsers, opts.NumRecipes, opts.NumReviews)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		users = append(users, user)
	}

	if err := s.seedFollowMesh(users); err != nil {
		return err
	}

	recipes := make([]*models.Recipe, 0, opts.NumRecipes)
	for i := 0; i < opts.NumRecipes; i++ {
		author := users[s.rand.Intn(len(users))]
		recipe, err := s.factory.CreateRecipe(author)
		if err != nil {
			return fmt.Errorf("creating recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	reviews := make([]*models.Review, 0, opts.NumReviews)
	reviewed := make(map[[2]int64]bool)
	for len(reviews) < opts.NumReviews {
		author := users[s.rand.Intn(len(users))]
		recipe := recipes[s.rand.Intn(len(recipes))]
		key := [2]int64{author.AuthorID, recipe.RecipeID}
		if reviewed[key] {
			continue
		}
		reviewed[key] = true

		review, err := s.factory.CreateReview(author, recipe)
		if err != nil {
			return fmt.Errorf("creating review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := s.seedLikes(users, reviews); err != nil {
		return err
	}

	if err := s.refreshAggregates(recipes); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d recipes, %d reviews", len(users), len(recipes), len(reviews))
	return nil
}

// seedFollowMesh gives every user a few outgoing follows, never a self-loop
// and never a duplicate edge.
func (s *Seeder) seedFollowMesh(users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, follower := range users {
		outgoing := s.rand.Intn(5) + 1
		seen := make(map[int64]bool, outgoing)
		for j := 0; j < outgoing; j++ {
			target := users[s.rand.Intn(len(users))]
			if target.AuthorID == follower.AuthorID || seen[target.AuthorID] {
				continue
			}
			seen[target.AuthorID] = true
			if err := s.factory.CreateFollow(follower, target); err != nil {
				return fmt.Errorf("creating follow: %w", err)
			}
		}
	}
	return nil
}

// seedLikes sprinkles likes over reviews, skipping an author's own review.
func (s *Seeder) seedLikes(users []*models.User, reviews []*models.Review) error {
	for _, review := range reviews {
		likers := s.rand.Intn(4)
		seen := make(map[int64]bool, likers)
		for j := 0; j < likers; j++ {
			user := users[s.rand.Intn(len(users))]
			if user.AuthorID == review.AuthorID || seen[user.AuthorID] {
				continue
			}
			seen[user.AuthorID] = true
			if err := s.factory.CreateLike(user, review); err != nil {
				return fmt.Errorf("creating like: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) refreshAggregates(recipes []*models.Recipe) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, recipe := range recipes {
			if _, err := repository.RecomputeTx(tx, recipe.RecipeID); err != nil {
				return fmt.Errorf("recomputing recipe %d: %w", recipe.RecipeID, err)
			}
		}
		return nil
	})
}
