package handler

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, reminders *ReminderHandler, notifications *NotificationHandler) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/reminders", reminders.List)
		v1.POST("/reminders", reminders.Create)
		v1.GET("/reminders/stream", reminders.Stream)
		v1.POST("/reminders/disable-all", reminders.DisableAll)
		v1.GET("/reminders/:id", reminders.Get)
		v1.PUT("/reminders/:id", reminders.Update)
		v1.DELETE("/reminders/:id", reminders.Delete)
		v1.POST("/reminders/:id/toggle", reminders.Toggle)

		v1.POST("/notifications/activate", notifications.Activate)
		v1.POST("/notifications/present", notifications.Present)
		v1.POST("/notifications/deliver", notifications.Deliver)
		v1.GET("/notifications/authorization", notifications.GetAuthorization)
		v1.PUT("/notifications/authorization", notifications.SetAuthorization)

		v1.GET("/navigation/stream", notifications.NavigationStream)
	}
}
