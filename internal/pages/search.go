package pages

import (
	"github.com/themizzi/storefrontqa/internal/browser"
)

type SearchPage struct {
	*browser.Page

	Results       browser.Target
	ProductTitles browser.Target
	NoResults     browser.Target
	Heading       browser.Target
	Content       browser.Target
	SearchInput   browser.Target
	SearchButton  browser.Target
}

func NewSearchPage(page *browser.Page, sel *Selectors) *SearchPage {
	s := sel.Search
	return &SearchPage{
		Page:          page,
		Results:       s.Results.Target(),
		ProductTitles: s.ProductTitles.Target(),
		NoResults:     s.NoResults.Target(),
		Heading:       s.Heading.Target(),
		Content:       s.Content.Target(),
		SearchInput:   s.SearchInput.Target(),
		SearchButton:  s.SearchButton.Target(),
	}
}

// ResultsCount waits for the results page to settle and counts the hits.
func (s *SearchPage) ResultsCount() (int, error) {
	if err := s.WaitForSettled(); err != nil {
		return 0, err
	}
	return s.Count(s.Results)
}

func (s *SearchPage) ProductTitleTexts() ([]string, error) {
	if err := s.WaitForSettled(); err != nil {
		return nil, err
	}
	return s.AllTexts(s.ProductTitles)
}

// ClickProduct opens the first result whose text contains name.
func (s *SearchPage) ClickProduct(name string) error {
	return s.ClickAndWaitForNavigation(browser.Text(name).First(), navigation(s.Page))
}

func (s *SearchPage) IsNoResultsDisplayed() bool {
	return s.IsVisible(s.NoResults)
}

func (s *SearchPage) NoResultsMessage() (string, error) {
	return s.GetText(s.Content)
}

// SearchAgain searches for term from the results page. term must differ from
// the current search, since completion is detected by the URL changing.
func (s *SearchPage) SearchAgain(term string) error {
	if err := s.Fill(s.SearchInput, term); err != nil {
		return err
	}
	return s.ClickAndWaitForNavigation(s.SearchButton, navigation(s.Page))
}
