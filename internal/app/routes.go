package app

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.Engine, a *App, auth gin.HandlerFunc) {
	router.GET("/healthz", a.HealthHandler)

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", a.GoogleOAuth2CallbackHandler)

	api := router.Group("/api", auth)
	{
		speakers := api.Group("/speakers")
		{
			speakers.GET("", a.SearchSpeakersHandler)
			speakers.GET("/specialities", a.ListSpecialitiesHandler)
			speakers.GET("/:id", a.GetSpeakerHandler)
			speakers.GET("/:id/slots", a.GetSpeakerSlotsHandler)
			speakers.POST("/:id/select", a.SelectSpeakerHandler)
		}

		sessions := api.Group("/sessions")
		{
			sessions.POST("", a.OpenSessionHandler)
			sessions.GET("/:sid", a.GetSessionHandler)
			sessions.DELETE("/:sid", a.CloseSessionHandler)
			sessions.PUT("/:sid/speaker", a.SetSessionSpeakerHandler)
			sessions.POST("/:sid/prev", a.PrevMonthHandler)
			sessions.POST("/:sid/next", a.NextMonthHandler)
			sessions.POST("/:sid/days/:date/select", a.SelectDayHandler)
			sessions.PUT("/:sid/date", a.PickDateHandler)
			sessions.PUT("/:sid/show-only-selected", a.ShowOnlySelectedHandler)
			sessions.POST("/:sid/bookings", a.CreateBookingHandler)
		}

		api.GET("/calendar/auth", a.GoogleAuthHandler)
	}
}
