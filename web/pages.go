package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"food-truck/chart"
	"food-truck/models"
	"food-truck/services"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var assetsFS embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type pageSet map[string]*template.Template

var pageNames = []string{"home", "restaurants", "restaurant", "basket", "dashboard", "profile"}

func parsePages() (pageSet, error) {
	funcs := template.FuncMap{
		"money": services.FormatMoney,
	}
	set := make(pageSet, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		set[name] = t
	}
	return set, nil
}

// pageData is what every page template receives.
type pageData struct {
	Title       string
	User        string
	Flash       string
	Error       string
	BasketCount int
	Refresh     int // seconds; 0 disables auto-refresh
	Data        any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, status int, p pageData) {
	p.User = currentUser(r)
	if p.Flash == "" {
		p.Flash = r.URL.Query().Get("flash")
	}
	if p.Error == "" {
		p.Error = r.URL.Query().Get("error")
	}
	if c, err := r.Cookie(basketCookie); err == nil {
		if b, err := s.baskets.Load(r.Context(), c.Value); err == nil {
			p.BasketCount = len(b.Items)
		}
	}
	var buf bytes.Buffer
	if err := s.pages[name].Execute(&buf, p); err != nil {
		s.logFailure(r, "pages", err, "render "+name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, name string, err error, p pageData) {
	status, detail := statusAndDetail(err)
	if status >= http.StatusInternalServerError {
		s.logFailure(r, "pages", err, "page failed")
	}
	p.Error = detail
	s.render(w, r, name, status, p)
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	if msg != "" {
		path += "?" + url.Values{key: {msg}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *Server) pageHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home", http.StatusOK, pageData{Title: "Food Truck"})
}

func (s *Server) formLogin(w http.ResponseWriter, r *http.Request) {
	c, err := s.login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		s.renderError(w, r, "home", err, pageData{Title: "Food Truck"})
		return
	}
	s.setUser(w, c.Username)
	http.Redirect(w, r, "/restaurants", http.StatusSeeOther)
}

func (s *Server) formRegister(w http.ResponseWriter, r *http.Request) {
	if r.PostFormValue("password") != r.PostFormValue("confirm_password") {
		s.render(w, r, "home", http.StatusBadRequest, pageData{Title: "Food Truck", Error: "Passwords do not match"})
		return
	}
	_, err := s.register(r.Context(), models.RegisterInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		s.renderError(w, r, "home", err, pageData{Title: "Food Truck"})
		return
	}
	s.render(w, r, "home", http.StatusOK, pageData{Title: "Food Truck", Flash: "Registration successful!"})
}

func (s *Server) formLogout(w http.ResponseWriter, r *http.Request) {
	s.clearUser(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) pageRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.ListRestaurants(r.Context())
	if err != nil {
		s.renderError(w, r, "restaurants", err, pageData{Title: "Restaurants"})
		return
	}
	s.render(w, r, "restaurants", http.StatusOK, pageData{Title: "Restaurants", Data: list})
}

type restaurantPage struct {
	Restaurant *models.Restaurant
	Menu       []models.MenuItem
}

func (s *Server) pageRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, menu, err := s.restaurantMenu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, "restaurant", err, pageData{Title: "Restaurant", Data: restaurantPage{}})
		return
	}
	s.render(w, r, "restaurant", http.StatusOK, pageData{Title: rest.Name, Data: restaurantPage{Restaurant: rest, Menu: menu}})
}

func (s *Server) formBasketAdd(w http.ResponseWriter, r *http.Request) {
	rid, _ := strconv.ParseInt(r.PostFormValue("restaurant_id"), 10, 64)
	_, err := s.addBasketItem(r.Context(), s.basketID(w, r), addItemRequest{
		RestaurantID: rid,
		Title:        r.PostFormValue("title"),
		Price:        r.PostFormValue("price"),
	})
	back := "/restaurants/" + strconv.FormatInt(rid, 10)
	if rid <= 0 {
		back = "/restaurants"
	}
	if err != nil {
		_, detail := statusAndDetail(err)
		redirectWith(w, r, back, "error", detail)
		return
	}
	redirectWith(w, r, back, "flash", r.PostFormValue("title")+" added to basket")
}

func (s *Server) pageBasket(w http.ResponseWriter, r *http.Request) {
	b, err := s.baskets.Load(r.Context(), s.basketID(w, r))
	if err != nil {
		s.renderError(w, r, "basket", err, pageData{Title: "Basket", Data: basketView{}})
		return
	}
	s.render(w, r, "basket", http.StatusOK, pageData{Title: "Basket", Data: newBasketView(b)})
}

func (s *Server) formBasketOp(op basketOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.updateBasket(r.Context(), s.basketID(w, r), op, r.PostFormValue("title")); err != nil {
			_, detail := statusAndDetail(err)
			redirectWith(w, r, "/basket", "error", detail)
			return
		}
		http.Redirect(w, r, "/basket", http.StatusSeeOther)
	}
}

func (s *Server) formBasketClear(w http.ResponseWriter, r *http.Request) {
	if err := s.clearBasket(r.Context(), s.basketID(w, r)); err != nil {
		_, detail := statusAndDetail(err)
		redirectWith(w, r, "/basket", "error", detail)
		return
	}
	http.Redirect(w, r, "/basket", http.StatusSeeOther)
}

func (s *Server) formBasketSubmit(w http.ResponseWriter, r *http.Request) {
	if _, err := s.submitBasket(r.Context(), s.basketID(w, r), currentUser(r)); err != nil {
		_, detail := statusAndDetail(err)
		redirectWith(w, r, "/basket", "error", detail)
		return
	}
	redirectWith(w, r, "/basket", "flash", "Order submitted successfully!")
}

type dashboardPage struct {
	Orders        []models.FoodOrder
	PieViewBox    string
	BarViewBox    string
	Pie           []chart.Slice
	Bars          []chart.Bar
	Legend        []chart.LegendEntry
	RevenueBars   []chart.Bar
	RevenueLegend []chart.LegendEntry
}

func toChartData(in []services.Datum) []chart.Datum {
	out := make([]chart.Datum, len(in))
	for i, d := range in {
		out[i] = chart.Datum{Label: d.Label, Value: d.Value}
	}
	return out
}

func (s *Server) pageDashboard(w http.ResponseWriter, r *http.Request) {
	p := pageData{Title: "Dash Board", Refresh: 5}
	orders, err := s.backend.ListFoodOrders(r.Context())
	if err != nil {
		p.Data = dashboardPage{}
		s.renderError(w, r, "dashboard", err, p)
		return
	}
	data := toChartData(services.QuantityByItem(orders))
	revenue := toChartData(services.RevenueByRestaurant(orders))
	p.Data = dashboardPage{
		Orders:        orders,
		PieViewBox:    chart.PieViewBox,
		BarViewBox:    chart.BarViewBox,
		Pie:           chart.Pie(data),
		Bars:          chart.Bars(data),
		Legend:        chart.Legend(data),
		RevenueBars:   chart.Bars(revenue),
		RevenueLegend: chart.Legend(revenue),
	}
	s.render(w, r, "dashboard", http.StatusOK, p)
}

func (s *Server) pageProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	c, err := s.backend.GetProfile(r.Context(), user)
	if errors.Is(err, services.ErrClientNotFound) {
		err = newAPIError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		s.renderError(w, r, "profile", err, pageData{Title: "Profile"})
		return
	}
	s.render(w, r, "profile", http.StatusOK, pageData{Title: "Profile", Data: c})
}
