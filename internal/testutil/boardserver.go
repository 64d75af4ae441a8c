package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"boardctl/internal/service"
)

// Request is one request seen by a BoardServer.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

// BoardServer serves the board HTTP API from a FakeBoard.
type BoardServer struct {
	*httptest.Server
	Board *FakeBoard

	// RequireToken, when set, rejects board, image and profile requests
	// without "Authorization: Bearer <Board.Token>".
	RequireToken bool

	mu       sync.Mutex
	requests []Request
}

// NewBoardServer starts a server backed by board. It is closed on test
// cleanup by the caller.
func NewBoardServer(board *FakeBoard) *BoardServer {
	s := &BoardServer{Board: board}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/users", func(r chi.Router) {
		r.Get("/check_email/{email}", s.checkEmail)
		r.Post("/registration", s.register)
		r.Post("/login", s.login)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/board/main_page/add_board", s.addBoard)
		r.Route("/board/main_page/{board}", func(r chi.Router) {
			r.Post("/add_text", s.addText)
			r.Post("/update_text", s.updateText)
			r.Post("/add_to_do_list", s.addTodoList)
			r.Post("/add_to_do_list_item", s.addTodoItem)
			r.Post("/update_to_do_list_item", s.updateTodoItem)
		})
		r.Post("/image/upload-image", s.uploadImage)
		r.Post("/profile/main_page/change_password", s.changePassword)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Requests returns every request received so far.
func (s *BoardServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *BoardServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *BoardServer) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.RequireToken && r.Header.Get("Authorization") != "Bearer "+s.Board.Token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *BoardServer) checkEmail(w http.ResponseWriter, r *http.Request) {
	exists, err := s.Board.CheckEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"exists": exists})
}

func (s *BoardServer) register(w http.ResponseWriter, r *http.Request) {
	err := s.Board.Register(r.Context(), service.Registration{
		Email:     r.FormValue("email"),
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Password2: r.FormValue("password2"),
	})
	if errors.Is(err, service.ErrRejected) {
		renderPage(w)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *BoardServer) login(w http.ResponseWriter, r *http.Request) {
	token, err := s.Board.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if errors.Is(err, service.ErrRejected) {
		renderPage(w)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Add("Set-Cookie", `Authorization="Bearer `+token+`"; Path=/; HttpOnly`)
	http.Redirect(w, r, "/board/main_page", http.StatusFound)
}

func (s *BoardServer) addBoard(w http.ResponseWriter, r *http.Request) {
	id, err := s.Board.CreateBoard(r.Context(), r.FormValue("boardName"))
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/board/main_page/"+string(id), http.StatusFound)
}

func (s *BoardServer) addText(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	id, err := s.Board.AddText(r.Context(), body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]service.ID{"text_id": id})
}

func (s *BoardServer) updateText(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TextID service.ID `json:"text_id"`
		Text   string     `json:"text"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if err := s.Board.UpdateText(r.Context(), body.TextID, body.Text); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

func (s *BoardServer) addTodoList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string `json:"title"`
		Text     string `json:"text"`
		Deadline string `json:"deadline"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	req := service.NewTodoList{Title: body.Title, InitialText: body.Text}
	if body.Deadline != "" {
		d, err := time.Parse("2006-01-02 15:04", body.Deadline)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid deadline")
			return
		}
		req.Deadline = &d
	}
	created, err := s.Board.CreateTodoList(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]service.ID{
		"to_do_list_id":       created.ListID,
		"to_do_list_new_item": created.ItemID,
	})
}

func (s *BoardServer) addTodoItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListID service.ID `json:"to_do_list_id"`
		Text   string     `json:"text"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	id, err := s.Board.AddTodoItem(r.Context(), body.ListID, body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]service.ID{"to_do_list_new_item": id})
}

func (s *BoardServer) updateTodoItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListID    service.ID `json:"to_do_list_id"`
		ItemID    service.ID `json:"to_do_list_item_id"`
		Text      string     `json:"text"`
		Completed bool       `json:"completed"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	err := s.Board.UpdateTodoItem(r.Context(), service.TodoItemUpdate{
		ListID:    body.ListID,
		ItemID:    body.ItemID,
		Text:      body.Text,
		Completed: body.Completed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

func (s *BoardServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer f.Close()
	if r.FormValue("is_main") != "true" {
		writeDetail(w, http.StatusUnprocessableEntity, "is_main is required")
		return
	}
	u, err := s.Board.UploadImage(r.Context(), hdr.Filename, f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"url": u})
}

func (s *BoardServer) changePassword(w http.ResponseWriter, r *http.Request) {
	err := s.Board.ChangePassword(r.Context(), r.FormValue("old_password"), r.FormValue("new_password"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		writeDetail(w, http.StatusUnprocessableEntity, "expected JSON body")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRejected):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

// renderPage stands in for the server re-rendering a form with an error.
func renderPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body>form</body></html>"))
}
