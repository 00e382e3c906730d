// Consult is a terminal consultation client. It keeps the transcript locally,
// streams replies from the server and can add recommended products to the
// session's quote.
//
// Commands: /quote shows the quote, /add N adds product N of the last
// recommendations, /quit exits. Ctrl-C aborts a reply in progress and quits
// at the prompt.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/transcript"
)

var (
	serverURL  = flag.String("server", "http://localhost:3000", "Consultation server base URL")
	categoryID = flag.String("category", "home", "Market category id")
	sessionID  = flag.String("session", "", "Session id (random when empty)")
	debug      = flag.Bool("debug", false, "Log debug output to stderr")
)

type session struct {
	client   *client
	reducer  *transcript.Reducer
	category domain.Category
	id       string
	quote    *domain.Quote
	// products of the last assistant message that carried recommendations
	offered []domain.Recommendation
}

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	category, ok := domain.CategoryByID(*categoryID)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown category %q\n", *categoryID)
		os.Exit(2)
	}
	if *sessionID == "" {
		*sessionID = uuid.NewString()
	}

	c := &client{
		baseURL: strings.TrimRight(*serverURL, "/"),
		http:    &http.Client{Timeout: config.StreamTimeout + 10*time.Second},
	}
	s := &session{
		client:   c,
		category: category,
		id:       *sessionID,
		reducer: transcript.New(*sessionID, category.ID,
			transcript.WithGateway(c),
			transcript.WithWelcome(config.WelcomeMessage(category.Name)),
		),
	}

	ctx := context.Background()
	quote, err := c.createQuote(ctx, s.id, category.ID)
	if err != nil {
		slog.Warn("quote unavailable", "error", err)
	}
	s.quote = quote

	for _, m := range s.reducer.Messages() {
		fmt.Printf("assistant> %s\n\n", m.Content)
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)

	lines := readLines(os.Stdin)
	for {
		fmt.Print("you> ")
		line, ok := prompt(lines, interrupts)
		if !ok {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/quote":
			s.showQuote(ctx)
			continue
		case strings.HasPrefix(line, "/add"):
			s.add(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/add")))
			continue
		}
		s.turn(ctx, line, interrupts)
	}
}

// readLines scans r on its own goroutine so the prompt can also wait for
// interrupts. The channel is closed at end of input.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		in := bufio.NewScanner(r)
		for in.Scan() {
			lines <- in.Text()
		}
	}()
	return lines
}

// prompt waits for the next input line. It reports false on end of input or
// on an interrupt received while no reply is streaming.
func prompt(lines <-chan string, interrupts <-chan os.Signal) (string, bool) {
	select {
	case line, ok := <-lines:
		return line, ok
	case <-interrupts:
		return "", false
	}
}

func (s *session) turn(parent context.Context, input string, interrupts <-chan os.Signal) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		select {
		case <-interrupts:
			cancel()
		case <-ctx.Done():
		}
	}()

	history := s.reducer.Messages()
	if _, err := s.reducer.Submit(input); err != nil {
		fmt.Printf("! %v\n", err)
		return
	}

	stream, err := s.client.consult(ctx, s.id, s.category.ID, input, history)
	if err != nil {
		if ctx.Err() != nil {
			s.reducer.Abort()
			return
		}
		msg, _ := s.reducer.OnError(err)
		fmt.Printf("assistant> %s\n\n", msg.Content)
		return
	}
	defer stream.Close()

	fmt.Print("assistant> ")
	printed := 0
	msg, err := transcript.Run(ctx, s.reducer, stream, func(partial string) {
		fmt.Print(partial[printed:])
		printed = len(partial)
	})
	fmt.Println()

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println("(reply aborted)")
	case errors.Is(err, transcript.ErrTruncated):
		fmt.Println("(connection closed before the reply finished)")
	case msg != nil && err != nil:
		fmt.Printf("assistant> %s\n", msg.Content)
	case msg != nil:
		s.showProducts(msg.Products)
	}
	fmt.Println()
}

func (s *session) showProducts(products []domain.Recommendation) {
	if len(products) == 0 {
		return
	}
	s.offered = products
	fmt.Println("\nRecommended products (/add N to quote):")
	for i, p := range products {
		fmt.Printf("  %d. %s  $%s  [%s]\n", i+1, p.Name, p.Price.StringFixed(2), p.Priority)
		if p.Reason != "" {
			fmt.Printf("     %s\n", p.Reason)
		}
	}
}

func (s *session) add(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.offered) {
		fmt.Printf("! choose a product between 1 and %d\n", len(s.offered))
		return
	}
	if s.quote == nil {
		q, err := s.client.createQuote(ctx, s.id, s.category.ID)
		if err != nil {
			fmt.Printf("! %v\n", err)
			return
		}
		s.quote = q
	}

	product := s.offered[n-1]
	if _, err := s.client.addItem(ctx, s.quote.ID, product.ID); err != nil {
		fmt.Printf("! %v\n", err)
		return
	}
	note := s.reducer.Note(config.AddedToQuoteMessage(product.Name))
	fmt.Printf("assistant> %s\n\n", note.Content)
}

func (s *session) showQuote(ctx context.Context) {
	q, err := s.client.quote(ctx, s.id)
	if err != nil {
		fmt.Printf("! %v\n", err)
		return
	}
	if q == nil || len(q.Items) == 0 {
		fmt.Println("Your quote is empty.")
		return
	}
	fmt.Printf("Quote %s (%s)\n", q.ID, q.Status)
	for _, it := range q.Items {
		name := it.ProductID.String()
		if it.Product != nil {
			name = it.Product.Name
		}
		fmt.Printf("  %3d x %-30s $%s\n", it.Quantity, name, it.TotalPrice.StringFixed(2))
	}
	fmt.Printf("  %d items, total $%s\n\n", q.ItemCount(), q.TotalAmount.StringFixed(2))
}
