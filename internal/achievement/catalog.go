package achievement

// Counter names a UserProgress field an achievement threshold reads.
type Counter string

const (
	CounterWishesCreated         Counter = "wishes_created"
	CounterLikesReceived         Counter = "likes_received"
	CounterLikesGiven            Counter = "likes_given"
	CounterWishesViewed          Counter = "wishes_viewed"
	CounterUsersHelped           Counter = "users_helped"
	CounterConsecutiveActiveDays Counter = "consecutive_active_days"
)

// Achievement is one unlockable badge. Counter may be empty for badges granted
// out of band (weekly_champion); the evaluator skips those.
type Achievement struct {
	ID        string
	Name      string
	Counter   Counter
	Threshold int
	Points    int
}

// Catalog is the fixed badge table. Read-only configuration; thresholds live
// here and nowhere else.
var Catalog = []Achievement{
	{ID: "first_wish", Name: "First Step", Counter: CounterWishesCreated, Threshold: 1, Points: 10},
	{ID: "wish_master", Name: "Wish Master", Counter: CounterWishesCreated, Threshold: 10, Points: 50},
	{ID: "popular_dreamer", Name: "Popular Dreamer", Counter: CounterLikesReceived, Threshold: 25, Points: 75},
	{ID: "active_viewer", Name: "Active Viewer", Counter: CounterWishesViewed, Threshold: 50, Points: 30},
	{ID: "social_butterfly", Name: "Social Butterfly", Counter: CounterLikesGiven, Threshold: 100, Points: 60},
	{ID: "consistent_user", Name: "Consistent User", Counter: CounterConsecutiveActiveDays, Threshold: 7, Points: 40},
	{ID: "helping_hand", Name: "Helping Hand", Counter: CounterUsersHelped, Threshold: 5, Points: 80},
	{ID: "weekly_champion", Name: "Weekly Champion", Points: 100},
}

// ByID returns the catalog entry for id, or nil.
func ByID(id string) *Achievement {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}
