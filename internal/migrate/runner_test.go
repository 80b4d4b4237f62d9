package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	script := `
create table a (id int);
insert into a values (1); insert into a values (2);
insert into b (txt) values ('com ; ponto e vírgula');
`
	stmts := splitStatements(script)
	if len(stmts) != 4 {
		t.Fatalf("got %d statements: %q", len(stmts), stmts)
	}
}

func TestSplitStatementsKeepsDollarQuotedBody(t *testing.T) {
	script := `
create function touch() returns trigger as $$
begin
  new.updated_at := now();
  return new;
end;
$$ language plpgsql;
select 1;
`
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements: %q", len(stmts), stmts)
	}
}

func TestCollectSQLOrdersByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "ignore.txt", "0003_c.down.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := collectSQL(dir, ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if len(files) != 2 || files[0].base != "0001_a.up.sql" || files[1].base != "0002_b.up.sql" {
		t.Fatalf("files = %+v", files)
	}
}

func TestCollectSQLMissingDirIsEmpty(t *testing.T) {
	files, err := collectSQL(filepath.Join(t.TempDir(), "nope"), ".sql")
	if err != nil || files != nil {
		t.Fatalf("files=%v err=%v", files, err)
	}
}
