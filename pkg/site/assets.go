/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package site holds the fixed artifact set published into every provisioned
// repository and the logic that merges caller-supplied attachments into it.
package site

import "fmt"

// Branch is the branch every file write targets.
const Branch = "main"

const licenseTemplate = `MIT License

Copyright (c) %d %s

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`

const readme = `# Captcha Solver
Static page that accepts ?url= and OCRs image using Tesseract.js.
Falls back to sample.png if provided.

## License
MIT
`

const pagesWorkflow = `name: Deploy Pages
on:
  push:
    branches: [ "main" ]
  workflow_dispatch:
permissions:
  contents: read
  pages: write
  id-token: write
concurrency:
  group: "pages"
  cancel-in-progress: true
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/configure-pages@v5
        with:
          enablement: enabled
      - uses: actions/upload-pages-artifact@v3
        with:
          path: .
  deploy:
    needs: build
    runs-on: ubuntu-latest
    environment:
      name: github-pages
      url: ${{ steps.deployment.outputs.page_url }}
    steps:
      - id: deployment
        uses: actions/deploy-pages@v4
`

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Captcha Solver</title>
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <script src="https://unpkg.com/tesseract.js@v4.0.2/dist/tesseract.min.js"></script>
  <style>body{font-family:system-ui,Segoe UI,Arial;margin:2rem;max-width:800px}</style>
</head>
<body>
  <h1>Captcha Solver</h1>
  <p>Pass an image via <code>?url=...</code>. Falls back to <code>sample.png</code> if present.</p>
  <img id="captcha" alt="captcha" style="max-width:100%;border:1px solid #ccc;padding:8px">
  <pre id="status" aria-live="polite">idle…</pre>
  <h2>Result</h2>
  <div id="result" style="font-size:1.25rem;font-weight:700;"></div>
  <script>
    const qs = new URLSearchParams(location.search);
    const url = qs.get('url') || 'sample.png';
    const img = document.getElementById('captcha');
    const status = document.getElementById('status');
    const result = document.getElementById('result');
    img.src = url;
    (async () => {
      try {
        status.textContent = 'Solving…';
        const watchdog = setTimeout(() => { throw new Error('Timeout after 15s'); }, 15000);
        const { data: { text } } = await Tesseract.recognize(url, 'eng', {
          logger: m => { if (m.status) status.textContent = m.status; }
        });
        clearTimeout(watchdog);
        result.textContent = (text || '').trim();
        status.textContent = 'Done';
      } catch (e) {
        status.textContent = 'Failed: ' + (e.message || e);
      }
    })();
  </script>
</body>
</html>
`

// File is a single repository file to publish.
type File struct {
	Path    string
	Content []byte
}

// FixedFiles returns the four artifacts published into every repository, in
// publication order. The license text interpolates the given year and owner.
func FixedFiles(owner string, year int) []File {
	return []File{
		{Path: "LICENSE", Content: fmt.Appendf(nil, licenseTemplate, year, owner)},
		{Path: "README.md", Content: []byte(readme)},
		{Path: ".github/workflows/pages.yml", Content: []byte(pagesWorkflow)},
		{Path: "index.html", Content: []byte(indexHTML)},
	}
}
