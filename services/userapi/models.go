package userapi

import "github.com/ecoquest/ecoquest/core/session"

type (
	User struct {
		ID        int64        `json:"id" validate:"required,min=1"`
		Email     string       `json:"email" validate:"required,email"`
		Username  string       `json:"username"`
		FirstName string       `json:"firstName"`
		LastName  string       `json:"lastName"`
		Role      session.Role `json:"role" validate:"omitempty,role"`
		Enabled   bool         `json:"enabled"`
	}

	CreateUserRequest struct {
		FirstName string       `json:"firstName" validate:"required"`
		LastName  string       `json:"lastName" validate:"required"`
		Email     string       `json:"email" validate:"required,email"`
		Password  string       `json:"password" validate:"required"`
		Role      session.Role `json:"role" validate:"required,role"`
	}

	LearningPath struct {
		PathID       int64  `json:"pathId" validate:"required,min=1"`
		Title        string `json:"title" validate:"required"`
		Description  string `json:"description"`
		TotalLessons int    `json:"totalLessons" validate:"min=0"`
		Icon         string `json:"icon"`
		Color        string `json:"color"`
		BgColor      string `json:"bgColor"`
		SortOrder    int    `json:"sortOrder"`
		IsActive     bool   `json:"isActive"`
	}

	UserProgress struct {
		ProgressID         int64   `json:"progressId"`
		PathID             int64   `json:"pathId" validate:"required,min=1"`
		PathTitle          string  `json:"pathTitle"`
		LessonsCompleted   int     `json:"lessonsCompleted" validate:"min=0"`
		ProgressPercentage float64 `json:"progressPercentage" validate:"percent"`
		Status             string  `json:"status"`
		UpdatedAt          string  `json:"updatedAt"`
	}

	Achievements struct {
		AchievementID      int64  `json:"achievementId"`
		UserID             int64  `json:"userId"`
		PointsEarned       int    `json:"pointsEarned" validate:"min=0"`
		CertificatesEarned int    `json:"certificatesEarned" validate:"min=0"`
		Level              int    `json:"level" validate:"min=0"`
		Streak             int    `json:"streak" validate:"min=0"`
		LastActiveDate     string `json:"lastActiveDate"`
		LastUpdated        string `json:"lastUpdated"`
	}

	Stats struct {
		TotalPaths           int     `json:"totalPaths" validate:"min=0"`
		CompletedPaths       int     `json:"completedPaths" validate:"min=0"`
		TotalCertificates    int     `json:"totalCertificates" validate:"min=0"`
		TotalPoints          int     `json:"totalPoints" validate:"min=0"`
		Level                int     `json:"level" validate:"min=0"`
		Streak               int     `json:"streak" validate:"min=0"`
		CompletionPercentage float64 `json:"completionPercentage" validate:"percent"`
	}
)
