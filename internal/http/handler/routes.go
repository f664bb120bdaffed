package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"wordvault/internal/model"
	"wordvault/internal/service"
	"wordvault/internal/storage"
)

// documentResponse is a StoredDocument plus its derived deadline, so clients
// never have to compute created_at + ttl themselves.
type documentResponse struct {
	model.StoredDocument
	ExpiresAt time.Time `json:"expires_at"`
}

func toDocumentResponse(d *model.StoredDocument) documentResponse {
	return documentResponse{StoredDocument: *d, ExpiresAt: d.ExpiresAt()}
}

type createDocumentRequest struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	TTLHours  int    `json:"ttl_hours"`
	Overwrite bool   `json:"overwrite"`
}

type replaceTextRequest struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

type copyDocumentRequest struct {
	Destination string `json:"destination"`
	Overwrite   bool   `json:"overwrite"`
}

type instantiateRequest struct {
	DocumentName string            `json:"document_name"`
	Variables    map[string]string `json:"variables"`
	TTLHours     int               `json:"ttl_hours"`
	Overwrite    bool              `json:"overwrite"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, store storage.Storage, docSvc service.DocumentService, tplSvc service.TemplateService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks object storage connectivity only. A Stat on a
	// key that never exists answers ErrNotFound from a healthy store.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		_, err := store.Stat(ctx, ".healthcheck")
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// List live documents, optionally filtered by name prefix
	app.Get("/documents", func(c *fiber.Ctx) error {
		docs, err := docSvc.List(c.UserContext(), c.Query("prefix"))
		if err != nil {
			return serviceError(c, err)
		}
		items := make([]documentResponse, 0, len(docs))
		for i := range docs {
			items = append(items, toDocumentResponse(&docs[i]))
		}
		return c.JSON(fiber.Map{"items": items, "total": len(items)})
	})

	// Create a new empty document
	app.Post("/documents", func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		doc, err := docSvc.Create(c.UserContext(), req.Name, req.Title, req.Author,
			time.Duration(req.TTLHours)*time.Hour, req.Overwrite)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc))
	})

	// Sweep expired documents out of the registry and storage
	app.Post("/documents/cleanup", func(c *fiber.Ctx) error {
		removed, err := docSvc.CleanupExpired(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"removed": removed})
	})

	// Temporary download URL; never outlives the document's TTL
	app.Get("/documents/:name/url", func(c *fiber.Ctx) error {
		url, expiresAt, err := docSvc.URL(c.UserContext(), c.Params("name"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_at": expiresAt})
	})

	// Existence check: expired and missing both answer false, not an error
	app.Get("/documents/:name/exists", func(c *fiber.Ctx) error {
		ok, err := docSvc.Exists(c.UserContext(), c.Params("name"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"exists": ok})
	})

	// Plain body text of a document
	app.Get("/documents/:name/text", func(c *fiber.Ctx) error {
		text, err := docSvc.Text(c.UserContext(), c.Params("name"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"text": text})
	})

	// Structural outline: top-level paragraphs and tables of the body
	app.Get("/documents/:name/outline", func(c *fiber.Ctx) error {
		outline, err := docSvc.Outline(c.UserContext(), c.Params("name"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(outline)
	})

	// Duplicate a document under a new name with its own storage key
	app.Post("/documents/:name/copy", func(c *fiber.Ctx) error {
		var req copyDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := docSvc.Copy(c.UserContext(), c.Params("name"), req.Destination, req.Overwrite)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc))
	})

	// Literal find/replace across the whole document, persisted in place
	app.Post("/documents/:name/replace", func(c *fiber.Ctx) error {
		var req replaceTextRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Find == "" {
			return writeError(c, fiber.StatusBadRequest, "FIND_REQUIRED", "find is required")
		}

		count, err := docSvc.ReplaceText(c.UserContext(), c.Params("name"), req.Find, req.Replace)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"replacements": count})
	})

	// Delete a document; missing and expired both succeed
	app.Delete("/documents/:name", func(c *fiber.Ctx) error {
		if err := docSvc.Delete(c.UserContext(), c.Params("name")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// List templates, optionally one category's worth
	app.Get("/templates", func(c *fiber.Ctx) error {
		tpls, err := tplSvc.List(c.UserContext(), c.Query("category"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"items": tpls, "total": len(tpls)})
	})

	// Upload a template (multipart/form-data, field name: file)
	app.Post("/templates", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		name := c.FormValue("name", fh.Filename)
		if name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		tpl, err := tplSvc.Add(c.UserContext(), c.FormValue("category"), name, data, model.TemplateMeta{
			Description: c.FormValue("description"),
			Author:      c.FormValue("author"),
		}, c.FormValue("overwrite") == "true")
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tpl)
	})

	// Inspect a template: structure counts plus the placeholder names it holds
	app.Get("/templates/:category/:name", func(c *fiber.Ctx) error {
		info, err := tplSvc.Inspect(c.UserContext(), c.Params("category"), c.Params("name"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(info)
	})

	// Instantiate: new registered document from a template plus variables
	app.Post("/templates/:category/:name/instantiate", func(c *fiber.Ctx) error {
		var req instantiateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.DocumentName == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "document_name is required")
		}

		doc, err := tplSvc.Instantiate(c.UserContext(), service.InstantiateRequest{
			Category:     c.Params("category"),
			TemplateName: c.Params("name"),
			DocumentName: req.DocumentName,
			Variables:    model.VariableMap(req.Variables),
			TTL:          time.Duration(req.TTLHours) * time.Hour,
			Overwrite:    req.Overwrite,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc))
	})

	// Remove a template; unlike documents, a missing template is an error
	app.Delete("/templates/:category/:name", func(c *fiber.Ctx) error {
		if err := tplSvc.Remove(c.UserContext(), c.Params("category"), c.Params("name")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
