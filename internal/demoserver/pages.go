package demoserver

// Page versions. Every page has both.
const (
	VersionAccessible = 1
	VersionBroken     = 2
)

// PageVersion is one rendering of a page.
type PageVersion struct {
	HTML        string
	ContentType string
	Headers     map[string]string
}

// PageDefinition holds all versions of a single page.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getProductsPage(),
		getArticlePage(),
		getContactPage(),
	}
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Demo Shop</title>
</head>
<body>
`

const siteNav = `    <header>
        <nav aria-label="Main">
            <ul>
                <li><a href="/">Home</a></li>
                <li><a href="/products">Products</a></li>
                <li><a href="/article">Article</a></li>
                <li><a href="/contact">Contact</a></li>
            </ul>
        </nav>
    </header>
`

const brokenNav = `    <div class="top">
        <div class="menu">
            <a href="/">Home</a> | <a href="/products">Products</a> |
            <a href="/article">Article</a> | <a href="/contact">Contact</a>
        </div>
    </div>
`

const siteFooter = `    <footer>
        <p>Demo Shop, 2024</p>
    </footer>
</body>
</html>`

const brokenFooter = `    <div class="bottom">Demo Shop, 2024</div>
</body>
</html>`

// ===== HOME PAGE =====

func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Landing page: headings, landmarks and a feature list",
		Versions: map[int]PageVersion{
			VersionAccessible: {
				HTML: pageHead + siteNav + `    <main>
        <h1>Welcome to the Demo Shop</h1>
        <p>Everything you need, delivered.</p>
        <section aria-labelledby="features">
            <h2 id="features">Why shop with us</h2>
            <ul>
                <li>Free shipping on orders over 50 euro</li>
                <li>Thirty day returns</li>
                <li>Support seven days a week</li>
            </ul>
        </section>
        <section aria-labelledby="news">
            <h2 id="news">Latest news</h2>
            <h3>Spring catalogue</h3>
            <p>The spring catalogue is out now.</p>
        </section>
    </main>
` + siteFooter,
			},
			VersionBroken: {
				HTML: pageHead + brokenNav + `    <div class="content">
        <h3>Welcome to the Demo Shop</h3>
        <p>Everything you need, delivered.</p>
        <h1></h1>
        <div class="title">Why shop with us</div>
        <p>- Free shipping on orders over 50 euro<br>
           - Thirty day returns<br>
           - Support seven days a week</p>
        <h5>Latest news</h5>
        <p>The spring catalogue is out now.</p>
    </div>
` + brokenFooter,
			},
		},
	}
}

// ===== PRODUCTS PAGE =====

func getProductsPage() PageDefinition {
	return PageDefinition{
		Path:        "/products",
		Description: "Price table with and without header cells",
		Versions: map[int]PageVersion{
			VersionAccessible: {
				HTML: pageHead + siteNav + `    <main>
        <h1>Products</h1>
        <table>
            <caption>Current prices</caption>
            <thead>
                <tr><th scope="col">Product</th><th scope="col">Price</th><th scope="col">Stock</th></tr>
            </thead>
            <tbody>
                <tr><th scope="row">Kettle</th><td>29 euro</td><td>12</td></tr>
                <tr><th scope="row">Toaster</th><td>35 euro</td><td>4</td></tr>
                <tr><th scope="row">Blender</th><td>59 euro</td><td>0</td></tr>
            </tbody>
        </table>
    </main>
` + siteFooter,
			},
			VersionBroken: {
				HTML: pageHead + brokenNav + `    <div class="content">
        <b>Products</b>
        <table>
            <tr><td><b>Product</b></td><td><b>Price</b></td><td><b>Stock</b></td></tr>
            <tr><td>Kettle</td><td>29 euro</td><td>12</td></tr>
            <tr><td>Toaster</td><td>35 euro</td><td>4</td></tr>
            <tr><td>Blender</td><td>59 euro</td><td>0</td></tr>
        </table>
    </div>
` + brokenFooter,
			},
		},
	}
}

// ===== ARTICLE PAGE =====

func getArticlePage() PageDefinition {
	return PageDefinition{
		Path:        "/article",
		Description: "Long-form article: quotations and ordered steps",
		Versions: map[int]PageVersion{
			VersionAccessible: {
				HTML: pageHead + siteNav + `    <main>
        <article>
            <h1>How we test our kettles</h1>
            <p>Every kettle goes through the same routine.</p>
            <ol>
                <li>Fill to the maximum line</li>
                <li>Boil ten times in a row</li>
                <li>Check the seal</li>
            </ol>
            <blockquote cite="https://example.com/review">
                <p>The most reliable kettle we have owned.</p>
                <footer>A happy customer</footer>
            </blockquote>
        </article>
        <aside aria-label="Related">
            <h2>Related</h2>
            <p><a href="/products">See all products</a></p>
        </aside>
    </main>
` + siteFooter,
			},
			VersionBroken: {
				HTML: pageHead + brokenNav + `    <div class="content">
        <div class="big">How we test our kettles</div>
        <p>Every kettle goes through the same routine.</p>
        <ul>
            <p>1. Fill to the maximum line</p>
            <p>2. Boil ten times in a row</p>
        </ul>
        <ol></ol>
        <blockquote>Indented for layout only</blockquote>
        <p>"The most reliable kettle we have owned."</p>
    </div>
` + brokenFooter,
			},
		},
	}
}

// ===== CONTACT PAGE =====

func getContactPage() PageDefinition {
	return PageDefinition{
		Path:        "/contact",
		Description: "Contact form with labelled and unlabelled fields",
		Versions: map[int]PageVersion{
			VersionAccessible: {
				HTML: pageHead + siteNav + `    <main>
        <h1>Contact us</h1>
        <form action="/contact" method="post">
            <fieldset>
                <legend>Your details</legend>
                <label for="name">Name</label>
                <input type="text" id="name" name="name" autocomplete="name">
                <label for="email">Email</label>
                <input type="email" id="email" name="email" autocomplete="email">
            </fieldset>
            <fieldset>
                <legend>Preferred reply</legend>
                <input type="radio" id="reply-mail" name="reply" value="mail">
                <label for="reply-mail">Email</label>
                <input type="radio" id="reply-phone" name="reply" value="phone">
                <label for="reply-phone">Phone</label>
            </fieldset>
            <label for="message">Message</label>
            <textarea id="message" name="message"></textarea>
            <button type="submit">Send</button>
        </form>
    </main>
` + siteFooter,
			},
			VersionBroken: {
				HTML: pageHead + brokenNav + `    <div class="content">
        <b>Contact us</b>
        <form action="/contact" method="post">
            Name <input type="text" name="name">
            Email <input type="text" name="email" placeholder="Email">
            <input type="radio" name="reply" value="mail"> Email
            <input type="radio" name="reply" value="phone"> Phone
            <textarea name="message"></textarea>
            <div onclick="this.form.submit()">Send</div>
        </form>
    </div>
` + brokenFooter,
			},
		},
	}
}
