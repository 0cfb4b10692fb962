package api

import "github.com/instaintelli/cli/pkg/session"

// Auth Request/Response Types
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type MFAVerifyLoginRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// AuthResponse is returned by login, register, MFA verification and the
// OAuth callback. When MFARequired is set only UserID, Email and Message
// are populated and no token is issued.
type AuthResponse struct {
	MFARequired  bool                `json:"mfa_required"`
	UserID       string              `json:"user_id,omitempty"`
	Email        string              `json:"email,omitempty"`
	Message      string              `json:"message,omitempty"`
	User         session.UserSummary `json:"user"`
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token,omitempty"`
	TokenType    string              `json:"token_type"`
}

// Profile Types
type Profile struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	Bio             string `json:"bio"`
	ProfileImageURL string `json:"profile_image_url"`
	CreatedAt       string `json:"created_at"`
	PostsCount      int    `json:"posts_count"`
	FollowersCount  int    `json:"followers_count"`
	FollowingCount  int    `json:"following_count"`
	MFAEnabled      bool   `json:"mfa_enabled"`
}

// Summary converts a profile into the session's cached user shape.
func (p Profile) Summary() session.UserSummary {
	return session.UserSummary{
		UserID:          p.UserID,
		Username:        p.Username,
		Email:           p.Email,
		FullName:        p.FullName,
		Bio:             p.Bio,
		ProfileImageURL: p.ProfileImageURL,
		FollowersCount:  p.FollowersCount,
		FollowingCount:  p.FollowingCount,
		PostsCount:      p.PostsCount,
		MFAEnabled:      p.MFAEnabled,
	}
}

// UpdateProfileRequest carries only the fields being changed.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// Empty reports whether no field is set.
func (r UpdateProfileRequest) Empty() bool {
	return r.Username == nil && r.FullName == nil && r.Bio == nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MFA Types
type MFASetupResponse struct {
	Secret        string   `json:"secret"`
	QRCode        string   `json:"qr_code"`
	RecoveryCodes []string `json:"recovery_codes"`
	Message       string   `json:"message"`
}

type MFAStatus struct {
	MFAEnabled       bool `json:"mfa_enabled"`
	HasRecoveryCodes bool `json:"has_recovery_codes"`
}

type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
	Message       string   `json:"message"`
}

// Post Types
type Post struct {
	PostID       string `json:"post_id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username,omitempty"`
	Text         string `json:"text"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	CreatedAt    string `json:"created_at"`
	LikeCount    int    `json:"like_count,omitempty"`
	CommentCount int    `json:"comment_count,omitempty"`
}

type PostList struct {
	Posts []Post `json:"posts"`
	Count int    `json:"count"`
}

type UploadPostResponse struct {
	PostID       string `json:"post_id"`
	Status       string `json:"status"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Message      string `json:"message"`
}

// Social Types
type UserRef struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at,omitempty"`
}

type FollowStats struct {
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
}

type Likes struct {
	Likers []UserRef `json:"likers"`
	Count  int       `json:"count"`
}

type Comment struct {
	CommentID string    `json:"comment_id"`
	Text      string    `json:"text"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt string    `json:"created_at"`
	Replies   []Comment `json:"replies,omitempty"`
}

type CommentList struct {
	Comments []Comment `json:"comments"`
	Count    int       `json:"count"`
}

type CreateCommentRequest struct {
	PostID          string `json:"post_id"`
	Text            string `json:"text"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
}

// Message Types
type Message struct {
	MessageID      string `json:"message_id"`
	Text           string `json:"text"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	CreatedAt      string `json:"created_at"`
	Read           bool   `json:"read"`
}

type Conversation struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	LastMessageID   string `json:"last_message_id"`
	LastMessageText string `json:"last_message_text"`
	LastMessageAt   string `json:"last_message_at"`
	Read            bool   `json:"read"`
}

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
}

// Search Types
type SemanticSearchRequest struct {
	Query    string `json:"query"`
	UserID   string `json:"user_id,omitempty"`
	NResults int    `json:"n_results,omitempty"`
	UseCache bool   `json:"use_cache"`
}

// SearchHit is one ranked post. Scores are nil when the backend could not
// compute a distance.
type SearchHit struct {
	PostID          string                 `json:"post_id"`
	Metadata        map[string]interface{} `json:"metadata"`
	SimilarityScore *float64               `json:"similarity_score,omitempty"`
	RelevanceScore  *float64               `json:"relevance_score,omitempty"`
}

// Caption returns the indexed caption or text of the hit, if any.
func (h SearchHit) Caption() string {
	for _, k := range []string{"caption", "text"} {
		if s, ok := h.Metadata[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

type SemanticSearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
	Error   string      `json:"error,omitempty"`
}

type ChatRequest struct {
	Question       string `json:"question"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	NContextPosts  int    `json:"n_context_posts,omitempty"`
	UseCache       bool   `json:"use_cache"`
}

type ChatResponse struct {
	Question        string      `json:"question"`
	Answer          string      `json:"answer"`
	ReferencedPosts []SearchHit `json:"referenced_posts"`
	Count           int         `json:"count"`
	Error           string      `json:"error,omitempty"`
}

type SimilarPostsResponse struct {
	PostID       string      `json:"post_id"`
	SimilarPosts []SearchHit `json:"similar_posts"`
	Count        int         `json:"count"`
	Error        string      `json:"error,omitempty"`
}

// Recommendation Types
type RecommendedPosts struct {
	Posts []Post `json:"posts"`
	Count int    `json:"count"`
	Type  string `json:"type"`
}

type RecommendedUser struct {
	UserID          string  `json:"user_id"`
	Username        string  `json:"username"`
	SimilarityScore float64 `json:"similarity_score,omitempty"`
	FollowerCount   int     `json:"follower_count,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

type RecommendedUsers struct {
	Users []RecommendedUser `json:"users"`
	Count int               `json:"count"`
}

// Analytics Types
type AnalyticsOverview struct {
	TotalPosts         int     `json:"total_posts"`
	TotalLikes         int     `json:"total_likes"`
	TotalComments      int     `json:"total_comments"`
	TotalViews         int     `json:"total_views"`
	Followers          int     `json:"followers"`
	Following          int     `json:"following"`
	AvgLikesPerPost    float64 `json:"avg_likes_per_post"`
	AvgCommentsPerPost float64 `json:"avg_comments_per_post"`
	EngagementRate     float64 `json:"engagement_rate"`
}

type DayEngagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Posts    int `json:"posts"`
}

type PostingTimes struct {
	BestHours      []int              `json:"best_hours"`
	HourlyAverages map[string]float64 `json:"hourly_averages"`
	Recommendation string             `json:"recommendation"`
}

type UserAnalytics struct {
	UserID             string                   `json:"user_id"`
	Overview           AnalyticsOverview        `json:"overview"`
	EngagementTimeline map[string]DayEngagement `json:"engagement_timeline"`
	TopPosts           []Post                   `json:"top_posts"`
	BestPostingTimes   PostingTimes             `json:"best_posting_times"`
	GeneratedAt        string                   `json:"generated_at"`
	Error              string                   `json:"error,omitempty"`
}

type PlatformAnalytics struct {
	TotalPosts         int     `json:"total_posts"`
	TotalLikes         int     `json:"total_likes"`
	TotalComments      int     `json:"total_comments"`
	ActiveUsers        int     `json:"active_users"`
	AvgLikesPerPost    float64 `json:"avg_likes_per_post"`
	AvgCommentsPerPost float64 `json:"avg_comments_per_post"`
	GeneratedAt        string  `json:"generated_at"`
	Error              string  `json:"error,omitempty"`
}

// Activity Types
type LogActivityRequest struct {
	ActivityType string                 `json:"activity_type"`
	ActivityData map[string]interface{} `json:"activity_data"`
}

type Activity struct {
	ActivityID   string                 `json:"activity_id"`
	ActivityType string                 `json:"activity_type"`
	ActivityData map[string]interface{} `json:"activity_data"`
	Timestamp    string                 `json:"timestamp,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
}

// ActivityQuery filters the caller's activity log. Zero values leave the
// backend defaults (100 entries, 30 days).
type ActivityQuery struct {
	Type  string
	Limit int
	Days  int
}

type ActivityStats struct {
	TotalActivities  int            `json:"total_activities"`
	ActivitiesByType map[string]int `json:"activities_by_type"`
	PeriodDays       int            `json:"period_days"`
	StartTime        string         `json:"start_time"`
	EndTime          string         `json:"end_time"`
}

// messageResponse is the generic {"message": ...} acknowledgement.
type messageResponse struct {
	Message string `json:"message"`
}
