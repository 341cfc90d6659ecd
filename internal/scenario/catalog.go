package scenario

const authToken = "token"

var catalog = []Scenario{
	{
		ID:          "ecommerce-checkout",
		Name:        "🛒 E-commerce Checkout Flow",
		Description: "Learn how shopping cart APIs work by simulating an online store checkout process",
		Difficulty:  "Beginner",
		Duration:    "5 minutes",
		LearningGoals: []string{
			"Understand multi-step API workflows",
			"Learn about state management across requests",
			"Experience a complete user journey",
		},
		Steps: []Step{
			{
				Number:           1,
				Title:            "View Shopping Cart",
				Method:           "GET",
				Endpoint:         "/api/todos",
				AuthType:         authToken,
				Explanation:      "In a real e-commerce app, this would be GET /api/cart. We're using Todos to simulate cart items.",
				ExpectedResult:   "You'll see a list of 'items' (todos) currently in your cart",
				LearningPoint:    "GET requests are idempotent - you can call them multiple times safely",
				RealWorldMapping: "GET /api/cart → Returns cart items with prices, quantities",
			},
			{
				Number:   2,
				Title:    "Add Item to Cart",
				Method:   "POST",
				Endpoint: "/api/todos",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "Product: Wireless Headphones ($99)",
					"description": "Premium noise-canceling headphones",
					"completed":   false,
				},
				Explanation:      "This simulates POST /api/cart/items. The 'title' represents the product, 'completed' means 'purchased'.",
				ExpectedResult:   "A new 'item' is added to your cart with an ID assigned by the server",
				LearningPoint:    "POST creates new resources. The server assigns the ID, not the client",
				RealWorldMapping: "POST /api/cart/items → {product_id: 123, quantity: 1}",
			},
			{
				Number:   3,
				Title:    "Update Cart Item Quantity",
				Method:   "PUT",
				Endpoint: "/api/todos/1",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "Product: Wireless Headphones ($99) - Qty: 2",
					"description": "Updated quantity to 2",
				},
				Explanation:      "This simulates PUT /api/cart/items/:id. We're 'updating' the item (changing quantity).",
				ExpectedResult:   "The item is updated with new information",
				LearningPoint:    "PUT updates existing resources. You need the resource ID in the URL",
				RealWorldMapping: "PUT /api/cart/items/1 → {quantity: 2}",
			},
			{
				Number:           4,
				Title:            "Proceed to Checkout",
				Method:           "PUT",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Body:             map[string]any{"completed": true},
				Explanation:      "This simulates POST /api/checkout. Marking 'completed=true' means the item is purchased.",
				ExpectedResult:   "Item is marked as 'completed' (purchased)",
				LearningPoint:    "State transitions (cart → purchased) are common in workflows",
				RealWorldMapping: "POST /api/checkout → Creates order, processes payment",
			},
			{
				Number:           5,
				Title:            "Remove Item from Cart",
				Method:           "DELETE",
				Endpoint:         "/api/todos/2",
				AuthType:         authToken,
				Explanation:      "This simulates DELETE /api/cart/items/:id. Customer changed their mind.",
				ExpectedResult:   "Item is removed from cart (404 if you try to GET it)",
				LearningPoint:    "DELETE is idempotent - calling it multiple times has the same effect",
				RealWorldMapping: "DELETE /api/cart/items/2 → Item removed from cart",
			},
		},
	},
	{
		ID:          "social-media-post",
		Name:        "📱 Social Media Post Lifecycle",
		Description: "Understand how social media APIs handle posts - create, edit, delete",
		Difficulty:  "Beginner",
		Duration:    "4 minutes",
		LearningGoals: []string{
			"Learn CRUD operations in context",
			"Understand resource lifecycle",
			"Experience content moderation patterns",
		},
		Steps: []Step{
			{
				Number:   1,
				Title:    "Create a Post",
				Method:   "POST",
				Endpoint: "/api/todos",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "My first social media post!",
					"description": "Just learned about APIs. This is amazing! #Learning #APIs",
					"completed":   false,
				},
				Explanation:      "Like POST /api/posts. The 'title' is your post content, 'completed' means 'published'.",
				ExpectedResult:   "Post is created with a unique ID",
				LearningPoint:    "POST returns 201 Created with the new resource",
				RealWorldMapping: "POST /api/posts → {id, content, author, timestamp}",
			},
			{
				Number:           2,
				Title:            "View Your Posts",
				Method:           "GET",
				Endpoint:         "/api/todos",
				AuthType:         authToken,
				Explanation:      "Like GET /api/posts/me. See all your posts (todos).",
				ExpectedResult:   "List of all your posts including the one you just created",
				LearningPoint:    "GET with auth returns user-specific data",
				RealWorldMapping: "GET /api/users/me/posts → Array of posts",
			},
			{
				Number:   3,
				Title:    "Edit Post (Fix Typo)",
				Method:   "PUT",
				Endpoint: "/api/todos/1",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "My first social media post! (edited)",
					"description": "Just learned about APIs. This is INCREDIBLE! #Learning #APIs #Tech",
				},
				Explanation:      "Like PUT /api/posts/:id. Fix a typo or add hashtags.",
				ExpectedResult:   "Post is updated. Notice 'updated_at' timestamp changes",
				LearningPoint:    "PUT replaces the resource. PATCH would partially update",
				RealWorldMapping: "PUT /api/posts/1 → Updated post with new edit timestamp",
			},
			{
				Number:           4,
				Title:            "Publish Post",
				Method:           "PUT",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Body:             map[string]any{"completed": true},
				Explanation:      "Like POST /api/posts/:id/publish. Change status from draft to published.",
				ExpectedResult:   "Post is now 'published' (completed=true)",
				LearningPoint:    "State machines: draft → published → archived",
				RealWorldMapping: "POST /api/posts/1/publish → {status: 'published'}",
			},
			{
				Number:           5,
				Title:            "Delete Post",
				Method:           "DELETE",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Explanation:      "Like DELETE /api/posts/:id. Remove content you regret posting.",
				ExpectedResult:   "Post is deleted (204 No Content response)",
				LearningPoint:    "DELETE returns 204 when successful (no body needed)",
				RealWorldMapping: "DELETE /api/posts/1 → Post removed from database",
			},
		},
	},
	{
		ID:          "booking-system",
		Name:        "✈️ Flight Booking Workflow",
		Description: "Simulate searching, reserving, and confirming a flight booking",
		Difficulty:  "Intermediate",
		Duration:    "6 minutes",
		LearningGoals: []string{
			"Understand search vs create operations",
			"Learn about temporary states (reservations)",
			"Experience transaction-like workflows",
		},
		Steps: []Step{
			{
				Number:           1,
				Title:            "Search Available Flights",
				Method:           "GET",
				Endpoint:         "/api/todos",
				AuthType:         authToken,
				Explanation:      "Like GET /api/flights?from=NYC&to=LAX. View available options (our todos simulate flight listings).",
				ExpectedResult:   "List of available 'flights' (todos)",
				LearningPoint:    "GET with query params filters results: ?from=X&to=Y&date=Z",
				RealWorldMapping: "GET /api/flights?origin=JFK&destination=LAX&date=2026-03-15",
			},
			{
				Number:   2,
				Title:    "Create a Reservation (Hold)",
				Method:   "POST",
				Endpoint: "/api/todos",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "Flight NYC→LAX (Reserved)",
					"description": "Flight AA123, Seat 12A - Reserved for 15 minutes",
					"completed":   false,
				},
				Explanation:      "Like POST /api/reservations. Create a temporary hold (completed=false means 'not confirmed').",
				ExpectedResult:   "Reservation created but not confirmed (pending payment)",
				LearningPoint:    "Reservations have TTL (time-to-live) before expiring",
				RealWorldMapping: "POST /api/reservations → {id, expires_at, status: 'pending'}",
			},
			{
				Number:   3,
				Title:    "Add Passenger Details",
				Method:   "PUT",
				Endpoint: "/api/todos/1",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "Flight NYC→LAX (Reserved)",
					"description": "Passenger: John Doe, Flight AA123, Seat 12A",
				},
				Explanation:      "Like PUT /api/reservations/:id. Add passenger information before confirming.",
				ExpectedResult:   "Reservation updated with passenger details",
				LearningPoint:    "Multi-step forms often use PUT to update draft data",
				RealWorldMapping: "PUT /api/reservations/1 → {passenger: {...}, seat: '12A'}",
			},
			{
				Number:           4,
				Title:            "Confirm Booking (Payment)",
				Method:           "PUT",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Body:             map[string]any{"completed": true},
				Explanation:      "Like POST /api/bookings/:id/confirm. Payment processed, reservation becomes booking.",
				ExpectedResult:   "Booking confirmed (completed=true)",
				LearningPoint:    "State transition: reservation → confirmed booking",
				RealWorldMapping: "POST /api/bookings/1/confirm → {status: 'confirmed', ticket_number}",
			},
			{
				Number:           5,
				Title:            "Cancel Booking",
				Method:           "DELETE",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Explanation:      "Like DELETE /api/bookings/:id. Cancel and request refund.",
				ExpectedResult:   "Booking cancelled (returns refund policy in real apps)",
				LearningPoint:    "DELETE might trigger side effects (refund, notifications)",
				RealWorldMapping: "DELETE /api/bookings/1 → {refund_amount, refund_status}",
			},
		},
	},
	{
		ID:          "task-management",
		Name:        "✅ Task Management (Current Schema)",
		Description: "Master the Todo API - our actual use case without abstraction",
		Difficulty:  "Beginner",
		Duration:    "3 minutes",
		LearningGoals: []string{
			"Learn pure CRUD operations",
			"Understand idempotency",
			"Practice authentication",
		},
		Steps: []Step{
			{
				Number:           1,
				Title:            "List All Tasks",
				Method:           "GET",
				Endpoint:         "/api/todos",
				AuthType:         authToken,
				Explanation:      "Fetch all your todos. This is an idempotent read operation.",
				ExpectedResult:   "Array of todo objects with id, title, completed status",
				LearningPoint:    "GET is safe and idempotent - no side effects",
				RealWorldMapping: "Standard REST pattern for listing resources",
			},
			{
				Number:   2,
				Title:    "Create a New Task",
				Method:   "POST",
				Endpoint: "/api/todos",
				AuthType: authToken,
				Body: map[string]any{
					"title":       "Learn API authentication",
					"description": "Understand Basic Auth vs JWT tokens",
					"completed":   false,
				},
				Explanation:      "Create a new todo. Server assigns the ID automatically.",
				ExpectedResult:   "201 Created response with new todo including server-assigned ID",
				LearningPoint:    "POST is not idempotent - calling twice creates two resources",
				RealWorldMapping: "Standard resource creation pattern",
			},
			{
				Number:           3,
				Title:            "Mark Task as Complete",
				Method:           "PUT",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Body:             map[string]any{"completed": true},
				Explanation:      "Update the todo's completion status.",
				ExpectedResult:   "200 OK with updated todo object",
				LearningPoint:    "PUT is idempotent - calling multiple times has same result",
				RealWorldMapping: "State updates in REST",
			},
			{
				Number:           4,
				Title:            "Delete a Task",
				Method:           "DELETE",
				Endpoint:         "/api/todos/1",
				AuthType:         authToken,
				Explanation:      "Permanently remove the todo.",
				ExpectedResult:   "204 No Content (successful deletion, no body)",
				LearningPoint:    "DELETE is idempotent - multiple calls same result",
				RealWorldMapping: "Standard resource deletion",
			},
		},
	},
}
