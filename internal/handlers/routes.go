package handlers

import "github.com/go-chi/chi/v5"

// Register mounts the API under /api.
func Register(r chi.Router, todos *TodoHandler, uploads *UploadHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", todos.ListTodos)   // GET /api/todos
			r.Post("/", todos.CreateTodo) // POST /api/todos

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todos.GetTodo)       // GET /api/todos/{id}
				r.Put("/", todos.UpdateTodo)    // PUT /api/todos/{id}
				r.Patch("/", todos.UpdateTodo)  // PATCH /api/todos/{id}
				r.Delete("/", todos.DeleteTodo) // DELETE /api/todos/{id}
			})
		})

		if uploads != nil {
			r.Post("/upload", uploads.Upload)
		}

		r.Get("/health", todos.HealthCheck)
		r.Get("/ready", todos.Ready)
	})
}
