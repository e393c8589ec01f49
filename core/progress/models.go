package progress

import "math"

const (
	PointsPerLevel  = 300
	LessonBonus     = 50
	PathBonus       = 50
	CompletePercent = 100
)

type (
	// QuizResult is the latest result of one quiz.
	QuizResult struct {
		ID             int    `json:"id"`
		Title          string `json:"title" validate:"required"`
		Score          int    `json:"score" validate:"percent"`
		TotalQuestions int    `json:"totalQuestions" validate:"min=1"`
		PointsEarned   int    `json:"pointsEarned" validate:"min=0"`
		CompletedAt    string `json:"completedAt" validate:"required,datetime=2006-01-02"`
	}

	// Record is the gamification state of the device's learner.
	Record struct {
		Name                 string         `json:"name"`
		Grade                string         `json:"grade"`
		EcoPoints            int            `json:"ecoPoints"`
		Level                int            `json:"level"`
		Streak               int            `json:"streak"`
		LastActiveDate       string         `json:"lastActiveDate"`
		CompletedQuizzes     []QuizResult   `json:"completedQuizzes"`
		CompletedChallenges  []string       `json:"completedChallenges"`
		UnlockedBadges       []string       `json:"unlockedBadges"`
		EnrolledLessons      []string       `json:"enrolledLessons"`
		LessonProgress       map[string]int `json:"lessonProgress"`
		LearningPathProgress map[string]int `json:"learningPathProgress"`
		CompletedPaths       []string       `json:"completedPaths"`
		Certificates         int            `json:"certificates"`
	}

	Stats struct {
		TotalPaths           int `json:"totalPaths"`
		CompletedPaths       int `json:"completedPaths"`
		TotalCertificates    int `json:"totalCertificates"`
		TotalPoints          int `json:"totalPoints"`
		Level                int `json:"level"`
		Streak               int `json:"streak"`
		CompletionPercentage int `json:"completionPercentage"`
	}
)

// Seed is the record materialized on a fresh device.
func Seed(today string) Record {
	return Record{
		Name:           "Emma Rodriguez",
		Grade:          "Grade 10",
		EcoPoints:      2485,
		Level:          8,
		Streak:         7,
		LastActiveDate: today,
		CompletedQuizzes: []QuizResult{
			{ID: 1, Title: "Climate Change Fundamentals", Score: 85, TotalQuestions: 10, PointsEarned: 42, CompletedAt: "2024-01-15"},
			{ID: 2, Title: "Renewable Energy Quiz", Score: 92, TotalQuestions: 8, PointsEarned: 37, CompletedAt: "2024-01-16"},
		},
		CompletedChallenges:  []string{"waste-segregation", "energy-saving"},
		UnlockedBadges:       []string{"first-steps", "quiz-master", "team-player", "energy-saver", "waste-warrior"},
		EnrolledLessons:      []string{},
		LessonProgress:       map[string]int{},
		LearningPathProgress: map[string]int{},
		CompletedPaths:       []string{},
		Certificates:         3,
	}
}

// LevelFor is the level earned by points.
func LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// backfill fills the collections missing from older saves.
func (r *Record) backfill() {
	if r.CompletedQuizzes == nil {
		r.CompletedQuizzes = []QuizResult{}
	}
	if r.CompletedChallenges == nil {
		r.CompletedChallenges = []string{}
	}
	if r.UnlockedBadges == nil {
		r.UnlockedBadges = []string{}
	}
	if r.EnrolledLessons == nil {
		r.EnrolledLessons = []string{}
	}
	if r.LessonProgress == nil {
		r.LessonProgress = map[string]int{}
	}
	if r.LearningPathProgress == nil {
		r.LearningPathProgress = map[string]int{}
	}
	if r.CompletedPaths == nil {
		r.CompletedPaths = []string{}
	}
}

// recalcStreak keeps the streak alive when the learner was active today or yesterday.
func (r *Record) recalcStreak(today, yesterday string) {
	switch r.LastActiveDate {
	case yesterday:
		if r.Streak < 1 {
			r.Streak = 1
		}
	case today:
	default:
		r.Streak = 1
	}
	r.LastActiveDate = today
}

// addPoints never lowers the level. Points saturate at math.MaxInt.
func (r *Record) addPoints(points int) {
	if points > math.MaxInt-r.EcoPoints {
		r.EcoPoints = math.MaxInt
	} else {
		r.EcoPoints += points
	}
	if lvl := LevelFor(r.EcoPoints); lvl > r.Level {
		r.Level = lvl
	}
}

// lessonCompletionBonus is awarded every time a lesson is set to 100%.
func (r *Record) lessonCompletionBonus() {
	r.addPoints(LessonBonus)
}

func (r *Record) stats(totalPaths int) Stats {
	s := Stats{
		TotalPaths:        totalPaths,
		CompletedPaths:    len(r.CompletedPaths),
		TotalCertificates: r.Certificates,
		TotalPoints:       r.EcoPoints,
		Level:             r.Level,
		Streak:            r.Streak,
	}
	if totalPaths > 0 {
		pct := int(math.Floor(float64(s.CompletedPaths)*100/float64(totalPaths) + 0.5))
		if pct > CompletePercent {
			pct = CompletePercent
		}
		s.CompletionPercentage = pct
	}
	return s
}

func roundPercent(percent float64) int {
	if math.IsNaN(percent) {
		return 0
	}
	return clampPercent(int(math.Max(-1, math.Min(101, math.Floor(percent+0.5)))))
}

// clampIncrement bounds a path increment so that adding it cannot overflow.
func clampIncrement(inc int) int {
	if inc < -CompletePercent {
		return -CompletePercent
	}
	if inc > CompletePercent {
		return CompletePercent
	}
	return inc
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > CompletePercent {
		return CompletePercent
	}
	return p
}
