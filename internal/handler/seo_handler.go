package handler

import (
	"encoding/xml"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
	"net/http"
	"strings"
	"time"
)

const feedSize = 20

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	posts       PostServicer
	projects    ProjectServicer
	baseURL     string
	title       string
	description string
	log         logger.Logger
}

// NewSeoHandler creates a new SeoHandler. server.BaseURL is the public
// origin, e.g. https://blog.example.com. projects may be nil.
func NewSeoHandler(ps PostServicer, pj ProjectServicer, server config.ServerConfig, log logger.Logger) *SeoHandler {
	return &SeoHandler{
		posts:       ps,
		projects:    pj,
		baseURL:     strings.TrimRight(server.BaseURL, "/"),
		title:       server.SiteTitle,
		description: server.SiteDescription,
		log:         log,
	}
}

// robotsHandler serves robots.txt.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /api/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler lists every published post and project.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to retrieve posts for sitemap")
		http.Error(w, "Failed to retrieve posts for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(posts)),
	}
	for _, post := range posts {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     h.baseURL + "/posts/" + post.Slug,
			LastMod: post.UpdatedAt.Format(sitemapDateFormat),
		})
	}
	if h.projects != nil {
		projects, err := h.projects.ListProjects(r.Context(), service.Anonymous)
		if err != nil {
			h.log.Error(err, "Failed to retrieve projects for sitemap")
			http.Error(w, "Failed to retrieve projects for sitemap", http.StatusInternalServerError)
			return
		}
		for _, project := range projects {
			sitemap.URLs = append(sitemap.URLs, sitemapURL{
				Loc:     h.baseURL + "/projects/" + project.Slug,
				LastMod: project.UpdatedAt.Format(sitemapDateFormat),
			})
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		h.log.Error(err, "Failed to encode sitemap")
	}
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Self          atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Description string  `xml:"description"`
}

// feedHandler serves an RSS 2.0 feed of the latest published posts.
func (h *SeoHandler) feedHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to retrieve posts for feed")
		http.Error(w, "Failed to retrieve posts for feed", http.StatusInternalServerError)
		return
	}
	if len(posts) > feedSize {
		posts = posts[:feedSize]
	}

	feed := rssFeed{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         h.title,
			Link:          h.baseURL,
			Description:   h.description,
			Language:      "en-us",
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
			Self:          atomLink{Href: h.baseURL + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
			Items:         make([]rssItem, len(posts)),
		},
	}
	for i, post := range posts {
		link := h.baseURL + "/posts/" + post.Slug
		feed.Channel.Items[i] = rssItem{
			Title:       post.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     post.CreatedAt.UTC().Format(time.RFC1123Z),
			Description: post.Excerpt,
		}
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(feed); err != nil {
		h.log.Error(err, "Failed to encode feed")
	}
}
