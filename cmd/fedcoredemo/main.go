package main

import (
	"crypto"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/acme/autocert"

	"github.com/driusan/fedcore/fedcore"
	"github.com/driusan/fedcore/httpsig"
	"github.com/driusan/fedcore/kvstore"
	"github.com/driusan/fedcore/store"
	"github.com/driusan/fedcore/vocab"
)

// renderNote renders a Note's content to HTML for the interactive (non
// JSON-LD) branch of content negotiation: fedcoredemo serves no wiki
// pages, but a Note's content is the same Markdown-body shape a wiki
// page's content would be.
func renderNote(content string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(content), p, r))
}

func htmlFallback(title, body string) fedcore.Fallback {
	return func(ctx *fedcore.Context, w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><title>%s</title><body>%s</body></html>", title, body)
	}
}

func notFoundFallback(ctx *fedcore.Context, w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

func unauthorizedFallback(ctx *fedcore.Context, w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
}

func requiredEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		log.Fatalf("missing required environment variable %s", name)
	}
	return v
}

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	domain := requiredEnv("fedcoredomain")
	root := requiredEnv("fedcoreroot")

	db := &store.FileStore{Root: root}

	createActor := flag.String("create-actor", "", "create a new local actor with this handle and exit")
	flag.Parse()
	if *createActor != "" {
		actor, err := db.CreateActor(*createActor, domain)
		if err != nil {
			log.Fatalf("create-actor: %v", err)
		}
		fmt.Println(actor.ID)
		return
	}

	var idempotency kvstore.Store
	if redisURL := os.Getenv("fedcoreredisurl"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("invalid fedcoreredisurl: %v", err)
		}
		idempotency = kvstore.NewRedis(redis.NewClient(opt))
	} else {
		idempotency = kvstore.NewMemory(10 * time.Minute)
	}

	verifier := &httpsig.Verifier{
		Cache: httpsig.NewMemoryCache(24 * time.Hour),
		Fetch: fetchActorKey,
	}

	srv := &fedcore.Server{
		Logger:            logger,
		SignatureVerifier: verifier.Verify,
		SignatureWindow:   5 * time.Minute,
		KeyOwnerResolver:  resolveKeyOwner,
	}

	actorDispatch := func(ctx *fedcore.Context, handle string) (vocab.Object, error) {
		actor, err := db.GetActor(handle)
		if err != nil {
			return nil, err
		}
		return actor, nil
	}

	followers := &fedcore.CollectionCallbacks{
		Dispatch: func(ctx *fedcore.Context, handle string, cursor *string, filter string) (*fedcore.Page, error) {
			ids, err := db.ListFollowers(handle)
			if err != nil {
				return nil, err
			}
			items := make([]interface{}, 0, len(ids))
			for _, id := range ids {
				items = append(items, &vocab.SimpleLink{Type: "Link", Href: id})
			}
			return &fedcore.Page{Items: items}, nil
		},
		Counter: func(ctx *fedcore.Context, handle string) (*int64, error) {
			n, err := db.FollowerCount(handle)
			if err != nil {
				return nil, err
			}
			return &n, nil
		},
		Authorize: followersAuthorize(db),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/", indexHandler(srv, domain, logger))
	mux.HandleFunc("/.well-known/webfinger", webFingerHandler(db, domain, logger))
	mux.HandleFunc("/login/", loginHandler(db, logger))
	mux.HandleFunc("/logout", logoutHandler(db))

	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		ctx := srv.NewContext(r, nil)
		rest := strings.TrimPrefix(r.URL.Path, "/users/")
		pieces := strings.SplitN(rest, "/", 2)
		handle := pieces[0]
		if len(pieces) == 1 || pieces[1] == "" {
			fedcore.RespondActor(ctx, w, handle, fedcore.ActorOptions{
				Dispatch:       actorDispatch,
				OnNotFound:     notFoundFallback,
				OnNotAcceptable: htmlFallback(handle, renderNote("This actor is only available as ActivityStreams JSON-LD.")),
				OnUnauthorized: unauthorizedFallback,
			})
			return
		}
		switch pieces[1] {
		case "inbox":
			fedcore.RespondInbox(ctx, w, fedcore.InboxOptions{
				Handle:            &handle,
				ActorDispatch:     actorDispatch,
				Store:             idempotency,
				KeyPrefix:         "inbox:" + handle,
				Listeners: map[vocab.ClassName]fedcore.InboxListener{
					"Follow": followListener(db, domain, logger),
					"Undo":   undoListener(db, domain),
					"Create": createListener(db, logger),
				},
				ErrorHandler: func(ctx *fedcore.Context, err error) {
					ctx.Logger.Error().Err(err).Msg("inbox: listener error")
				},
				OnNotFound:        notFoundFallback,
				SignatureVerifier: verifier.Verify,
				SignatureWindow:   5 * time.Minute,
				KeyOwnership:      keyOwnershipMatchesActor,
			})
		case "followers":
			fedcore.RespondCollection(ctx, w, handle, fedcore.CollectionOptions{
				Name:            "followers",
				Callbacks:       followers,
				OnNotFound:      notFoundFallback,
				OnNotAcceptable: htmlFallback(handle, renderNote("Followers are only available as ActivityStreams JSON-LD.")),
				OnUnauthorized:  unauthorizedFallback,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	mux.HandleFunc("/notes/", func(w http.ResponseWriter, r *http.Request) {
		ctx := srv.NewContext(r, nil)
		id := strings.TrimPrefix(r.URL.Path, "/notes/")
		fedcore.RespondObject(ctx, w, map[string]string{"id": id}, fedcore.ObjectOptions{
			Dispatch: func(ctx *fedcore.Context, params map[string]string) (vocab.Object, error) {
				note, err := db.GetNote(params["id"])
				if err != nil {
					return nil, err
				}
				return note, nil
			},
			OnNotFound:      notFoundFallback,
			OnNotAcceptable: htmlFallback(id, renderNote("This note is only available as ActivityStreams JSON-LD.")),
			OnUnauthorized:  unauthorizedFallback,
		})
	})

	logger.Info().Str("domain", domain).Msg("starting server")
	log.Fatal(http.Serve(autocert.NewListener(domain), mux))
}

// keyOwnershipMatchesActor implements the Inbox Pipeline's KeyOwnership
// collaborator: the signing key's owner (resolved the same way
// Context.Key does) must be the activity's declared actor.
func keyOwnershipMatchesActor(activity vocab.Activity, key crypto.PublicKey, ctx *fedcore.Context) (bool, error) {
	_, owner, err := ctx.Key()
	if err != nil || owner == nil {
		return false, err
	}
	actorID := activity.GetActorID()
	if actorID == nil {
		return false, nil
	}
	identifiable, ok := owner.(vocab.Identifiable)
	if !ok {
		return false, nil
	}
	ownerID := identifiable.GetID()
	if ownerID == nil {
		return false, nil
	}
	return ownerID.String() == actorID.String(), nil
}
