package assistant

import (
	"context"
	"fmt"
	"strings"
)

// Parameter describes one structured argument of an action.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Action is a pure adapter exposed to the conversational agent: it makes
// exactly one API call and renders the result (or failure) as a short
// sentence for the chat transcript. Failures never propagate as errors.
type Action struct {
	Name        string
	Description string
	Parameters  []Parameter
	Run         func(ctx context.Context, args map[string]string) string
}

// Catalog builds the full action set against the given client. baseURL is
// used to build shareable post links in replies.
func Catalog(c *Client, baseURL string) []Action {
	baseURL = strings.TrimRight(baseURL, "/")

	return []Action{
		{
			Name:        "createBlogPost",
			Description: "Create a new blog post with title and content",
			Parameters: []Parameter{
				{Name: "title", Type: "string", Description: "The title of the blog post", Required: true},
				{Name: "content", Type: "string", Description: "The content of the blog post in markdown format", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				post, err := c.CreatePost(ctx, args["title"], args["content"])
				if err != nil {
					return fmt.Sprintf("Failed to create blog post: %v", err)
				}
				return fmt.Sprintf("Successfully created blog post %q. You can now view it at %s/posts/%s",
					post.Title, baseURL, post.ID)
			},
		},
		{
			Name:        "getBlogPosts",
			Description: "Get all blog posts with their titles, authors, and creation dates",
			Run: func(ctx context.Context, args map[string]string) string {
				posts, err := c.ListPosts(ctx)
				if err != nil {
					return "Failed to fetch blog posts."
				}
				if len(posts) == 0 {
					return "No blog posts found. You can create a new one by asking me to create a blog post."
				}
				var b strings.Builder
				b.WriteString("Here are all the blog posts:\n\n")
				for i, p := range posts {
					author := ""
					if p.Author != nil {
						author = p.Author.Name
						if author == "" {
							author = p.Author.Email
						}
					}
					fmt.Fprintf(&b, "%d. **%s** by %s (%s)\n", i+1, p.Title, author, p.CreatedAt.Format("1/2/2006"))
				}
				return strings.TrimRight(b.String(), "\n")
			},
		},
		{
			Name:        "updateBlogPost",
			Description: "Update an existing blog post by ID",
			Parameters: []Parameter{
				{Name: "postId", Type: "string", Description: "The ID of the blog post to update", Required: true},
				{Name: "title", Type: "string", Description: "The new title for the blog post", Required: false},
				{Name: "content", Type: "string", Description: "The new content for the blog post in markdown format", Required: false},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				postID := args["postId"]
				if strings.TrimSpace(args["title"]) == "" && strings.TrimSpace(args["content"]) == "" {
					return "No changes provided. Please specify either a new title or content."
				}
				if err := c.UpdatePost(ctx, postID, args["title"], args["content"]); err != nil {
					return fmt.Sprintf("Failed to update blog post: %v", err)
				}
				return fmt.Sprintf("Successfully updated blog post %s. You can view it at %s/posts/%s", postID, baseURL, postID)
			},
		},
		{
			Name:        "deleteBlogPost",
			Description: "Delete a blog post by ID",
			Parameters: []Parameter{
				{Name: "postId", Type: "string", Description: "The ID of the blog post to delete", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				if err := c.DeletePost(ctx, args["postId"]); err != nil {
					return fmt.Sprintf("Failed to delete blog post: %v", err)
				}
				return fmt.Sprintf("Successfully deleted blog post %s.", args["postId"])
			},
		},
		{
			Name:        "toggleLike",
			Description: "Toggle like (or unlike) for a post by ID",
			Parameters: []Parameter{
				{Name: "postId", Type: "string", Description: "The ID of the blog post to like/unlike", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				liked, message, err := c.ToggleLike(ctx, args["postId"])
				if err != nil {
					return fmt.Sprintf("Failed to toggle like: %v", err)
				}
				if message != "" {
					return message
				}
				if liked {
					return "Post liked"
				}
				return "Post unliked"
			},
		},
		{
			Name:        "getLikeCount",
			Description: "Get the like count and whether the current user liked the post",
			Parameters: []Parameter{
				{Name: "postId", Type: "string", Description: "The ID of the blog post", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				count, likedByMe, err := c.LikeStatus(ctx, args["postId"])
				if err != nil {
					return "Failed to fetch like count."
				}
				msg := fmt.Sprintf("This post has %d likes.", count)
				if likedByMe {
					msg += " You liked it."
				}
				return msg
			},
		},
		{
			Name:        "getComments",
			Description: "Get comments for a specific post",
			Parameters: []Parameter{
				{Name: "postId", Type: "string", Description: "The ID of the blog post", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				comments, err := c.Comments(ctx, args["postId"])
				if err != nil {
					return "Failed to fetch comments."
				}
				if len(comments) == 0 {
					return "No comments found."
				}
				var b strings.Builder
				for i, cm := range comments {
					who := ""
					if cm.User != nil {
						who = cm.User.Name
						if who == "" {
							who = cm.User.Email
						}
					}
					fmt.Fprintf(&b, "%d. %s: %s\n", i+1, who, cm.Content)
				}
				return strings.TrimRight(b.String(), "\n")
			},
		},
		{
			Name:        "createComment",
			Description: "Create a comment on a post",
			Parameters: []Parameter{
				{Name: "postId", Type: "string", Description: "Post ID", Required: true},
				{Name: "content", Type: "string", Description: "Comment content", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				comment, err := c.CreateComment(ctx, args["postId"], args["content"])
				if err != nil {
					return fmt.Sprintf("Failed to create comment: %v", err)
				}
				return fmt.Sprintf("Comment created: %s", comment.Content)
			},
		},
		{
			Name:        "findPostByTitle",
			Description: "Find a post's ID by its title (exact match preferred, then substring)",
			Parameters: []Parameter{
				{Name: "title", Type: "string", Description: "The post title to look up", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				post, err := c.FindPostByTitle(ctx, args["title"])
				if err != nil {
					return fmt.Sprintf("Failed to find post: %v", err)
				}
				return fmt.Sprintf("Found post %q (id %s). You can view it at %s/posts/%s", post.Title, post.ID, baseURL, post.ID)
			},
		},
		{
			Name:        "registerUser",
			Description: "Register a new user with name, email, and password",
			Parameters: []Parameter{
				{Name: "name", Type: "string", Required: true},
				{Name: "email", Type: "string", Required: true},
				{Name: "password", Type: "string", Required: true},
			},
			Run: func(ctx context.Context, args map[string]string) string {
				message, err := c.Register(ctx, args["name"], args["email"], args["password"])
				if err != nil {
					return fmt.Sprintf("Failed to register user: %v", err)
				}
				return message
			},
		},
	}
}
