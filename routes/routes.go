package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quizone/handlers"
	"quizone/middleware"
	"quizone/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	QuestionPack *handlers.QuestionPackHandler
	Flashcard    *handlers.FlashcardHandler
	Comment      *handlers.CommentHandler
	Class        *handlers.ClassHandler
	Exam         *handlers.ExamHandler
	Message      *handlers.MessageHandler
	Admin        *handlers.AdminHandler
}

func SetupRoutes(
	router *gin.Engine,
	h Handlers,
	hub *services.Hub,
	resolver services.IdentityResolver,
	uploadDir string,
) {
	requireAuth := middleware.AuthMiddleware(resolver)
	optionalAuth := middleware.OptionalAuth(resolver)

	api := router.Group("/api")
	{
		// Public auth routes
		api.POST("/register", h.Auth.Register)
		api.POST("/user", h.Auth.AddUser)
		api.POST("/auth", h.Auth.Login)
		api.POST("/auth/refresh", h.Auth.Refresh)
		api.POST("/auth/google", h.Auth.LoginWithGoogle)
		api.POST("/decode-token", h.Auth.DecodeToken)
		api.POST("/rqreset-password", h.Auth.RequestPasswordReset)
		api.POST("/reset-password", h.Auth.ResetPassword)

		api.GET("/user/:userId", h.User.GetUser)
		api.GET("/questionPack", h.QuestionPack.ListPublic)
		api.GET("/questionPacks/search", optionalAuth, h.QuestionPack.Search)
		api.GET("/questionpack/comment/:commentId", optionalAuth, h.Comment.GetComment)

		protected := api.Group("/")
		protected.Use(requireAuth)
		{
			protected.GET("/id", h.Auth.Me)

			// Users
			protected.PUT("/user/:userId", h.User.UpdateProfile)
			protected.DELETE("/user/:userId", h.User.DeleteUser)
			protected.GET("/searchUser", h.User.SearchUsers)
			protected.GET("/users", h.User.ListUsers)

			// Question packs
			protected.POST("/questionPack", h.QuestionPack.CreateQuestionPack)
			protected.GET("/questionPacks/:id", h.QuestionPack.GetQuestionPack)
			protected.PUT("/questionpack/:id", h.QuestionPack.UpdateQuestionPack)
			protected.DELETE("/questionpack/:id", h.QuestionPack.DeleteQuestionPack)
			protected.GET("/questionPack/:id", h.Flashcard.GetByQuestionPack)
			protected.GET("/getQp4Teacher/:teacherId", h.QuestionPack.ListByTeacher)

			// Flashcards
			protected.POST("/question", h.Flashcard.AddFlashcard)
			protected.PUT("/flashcard/:id", h.Flashcard.UpdateFlashcard)

			// Comments
			protected.POST("/questionpack/comments", h.Comment.AddComment)
			protected.GET("/questionpack/comments/:flashcardId", h.Comment.GetComments)
			protected.DELETE("/questionpack/comment/:questionPackId/:commentId", h.Comment.DeleteComment)
			protected.POST("/questionpack/comment/reply/:commentId", h.Comment.AddReply)
			protected.DELETE("/questionpack/comment/reply/:commentId/:replyId", h.Comment.DeleteReply)

			// Classes
			protected.POST("/class", h.Class.CreateClass)
			protected.GET("/class", h.Class.ListClasses)
			protected.POST("/class/invite", h.Class.InviteStudent)
			protected.POST("/class/questionPackToClass", h.QuestionPack.AddToClass)
			protected.DELETE("/class/removeQp", h.QuestionPack.RemoveFromClass)
			protected.DELETE("/class/student", h.Class.RemoveStudent)
			protected.GET("/class/getMembers/:classId", h.Class.GetMembers)
			protected.GET("/class/:classId", h.Class.GetClass)
			protected.DELETE("/class/:classId", h.Class.DeleteClass)
			protected.GET("/join-class/:token", h.Class.JoinByInvite)

			// Messages
			protected.POST("/messages/:id", h.Message.SendMessage)
			protected.GET("/messages/:id", h.Message.GetMessages)

			// Exams and results
			protected.POST("/quiz", h.Exam.CreateExam)
			protected.GET("/quiz/:examId", h.Exam.GetExam)
			protected.GET("/exam/:questionPackId", h.Exam.GetExamByQuestionPack)
			protected.POST("/finish", h.Exam.SubmitExam)
			protected.GET("/results/:examId", h.Exam.GetExamResults)
			protected.GET("/results-student", h.Exam.GetStudentResults)

			// Admin
			protected.GET("/admin/dashboard", h.Admin.Dashboard)
			protected.GET("/admin/questionPacks", h.QuestionPack.ListAll)
		}
	}

	// WebSocket endpoint for presence and message push. The credential is the access
	// token; older clients send it as userId.
	router.GET("/ws", func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = c.Query("userId")
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		// The registry closes the connection when the credential does not resolve.
		hub.RegisterClient(conn, token)
	})

	router.Static("/uploads", uploadDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
